package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/aretw0/lattice/pkg/domain"
)

// RenderedBlock is one block of a page document.
type RenderedBlock struct {
	ID       string
	Type     string
	Visible  bool
	Editable bool
	HTML     template.HTML
	Failed   bool
}

type pageData struct {
	Name   string
	Theme  domain.Theme
	Edit   bool
	Blocks []RenderedBlock
}

var pageTemplate = template.Must(template.New("page").Funcs(funcs).Parse(pageHTML))

// Page writes the HTML document of p. In view mode only visible blocks are rendered;
// in edit mode every block is rendered inside its chrome.
func Page(w io.Writer, p domain.Page, res Resolver, rc *Context) error {
	if rc == nil {
		rc = NewContext(p.Theme, ModeView)
	}
	data := pageData{
		Name:  p.Name,
		Theme: rc.theme(),
		Edit:  rc.Mode == ModeEdit,
	}
	if data.Name == "" {
		data.Name = p.ID
	}
	data.Blocks = Blocks(p.Blocks, res, rc)
	return pageTemplate.Execute(w, data)
}

// Blocks renders each block the mode selects. A failing block is replaced by an
// inline error and never affects its siblings.
func Blocks(blocks []domain.Block, res Resolver, rc *Context) []RenderedBlock {
	edit := rc != nil && rc.Mode == ModeEdit
	out := make([]RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		if !b.Visible && !edit {
			continue
		}
		html, err := Block(b, res, rc)
		out = append(out, RenderedBlock{
			ID:       b.ID,
			Type:     b.Type,
			Visible:  b.Visible,
			Editable: b.Editable,
			HTML:     html,
			Failed:   err != nil,
		})
	}
	return out
}

// Block renders a single block, recovering from renderer panics.
// On failure the returned HTML is an inline error and err describes the cause.
func Block(b domain.Block, res Resolver, rc *Context) (html template.HTML, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer for %q panicked: %v", b.Type, r)
			html = failed(b, err)
		}
	}()

	var r Renderer = Placeholder{}
	if res != nil {
		if found := res.Renderer(b.Type); found != nil {
			r = found
		}
	}
	html, err = r.Render(b, rc)
	if err != nil {
		return failed(b, err), err
	}
	return html, nil
}

func failed(b domain.Block, err error) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<div class="lattice-error" data-block="%s">Could not render this %s block: %s</div>`,
		template.HTMLEscapeString(b.ID),
		template.HTMLEscapeString(b.Type),
		template.HTMLEscapeString(err.Error()),
	))
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}}</title>
<style>
:root {
  --lattice-primary: {{css .Theme.PrimaryColor}};
  --lattice-secondary: {{css .Theme.SecondaryColor}};
  --lattice-background: {{css .Theme.BackgroundColor}};
  --lattice-text: {{css .Theme.TextColor}};
  --lattice-font: {{css .Theme.FontFamily}};
  --lattice-radius: {{css .Theme.BorderRadius}};
}
body { margin: 0; background: var(--lattice-background); color: var(--lattice-text); font-family: var(--lattice-font); }
.lattice-page { max-width: 960px; margin: 0 auto; }
.lattice-button { display: inline-block; padding: 12px 24px; color: #ffffff; text-decoration: none; border: 0; cursor: pointer; }
.lattice-button.is-hovered { filter: brightness(0.9); }
.lattice-block.hidden { opacity: 0.5; }
.lattice-chrome { display: flex; gap: 8px; font-size: 12px; }
.lattice-placeholder, .lattice-error { border: 1px dashed #f59e0b; padding: 16px; }
</style>
</head>
<body>
<main class="lattice-page{{if .Edit}} editing{{end}}">
{{- range .Blocks}}
<section class="lattice-block{{if not .Visible}} hidden{{end}}" id="{{.ID}}" data-type="{{.Type}}">
{{- if $.Edit}}<div class="lattice-chrome"><span class="type">{{.Type}}</span>{{if not .Visible}}<span class="badge">hidden</span>{{end}}{{if .Editable}}<button type="button" class="delete" data-block="{{.ID}}">Delete</button>{{end}}</div>{{end}}
{{.HTML}}
</section>
{{- end}}
</main>
</body>
</html>
`
