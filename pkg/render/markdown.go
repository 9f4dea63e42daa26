package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy = bluemonday.UGCPolicy()
)

// RichText converts markdown written in a text block into sanitized HTML.
func RichText(source string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// Markdown renders a plain markdown preview of the visible blocks of a page,
// as shown in the terminal. Blocks without a markdown form fall back to the placeholder.
func Markdown(p domain.Page, res Resolver, rc *Context) string {
	var sb strings.Builder
	if p.Name != "" {
		sb.WriteString("# " + p.Name + "\n\n")
	}
	for _, b := range p.Blocks {
		if !b.Visible && (rc == nil || rc.Mode != ModeEdit) {
			continue
		}
		sb.WriteString(markdownBlock(b, res, rc))
		sb.WriteString("\n")
	}
	return sb.String()
}

func markdownBlock(b domain.Block, res Resolver, rc *Context) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out, _ = Placeholder{}.Markdown(b, rc)
		}
	}()

	mr, ok := res.Renderer(b.Type).(MarkdownRenderer)
	if !ok {
		mr = Placeholder{}
	}
	text, err := mr.Markdown(b, rc)
	if err != nil {
		text, _ = Placeholder{}.Markdown(b, rc)
	}
	if rc != nil && rc.Mode == ModeEdit && !b.Visible {
		text = "_(hidden)_\n\n" + text
	}
	return text
}
