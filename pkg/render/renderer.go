package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Renderer turns one block into an HTML fragment.
type Renderer interface {
	Render(b domain.Block, rc *Context) (template.HTML, error)
}

// MarkdownRenderer is implemented by renderers that support the terminal preview.
type MarkdownRenderer interface {
	Markdown(b domain.Block, rc *Context) (string, error)
}

// Resolver finds the renderer of a block type. It must be total.
type Resolver interface {
	Renderer(blockType string) Renderer
}

// Func adapts a function to the Renderer interface.
type Func func(b domain.Block, rc *Context) (template.HTML, error)

func (f Func) Render(b domain.Block, rc *Context) (template.HTML, error) {
	return f(b, rc)
}

// blockData is what every block template receives.
type blockData[V any] struct {
	ID       string
	Type     string
	V        V
	Style    template.CSS
	Theme    domain.Theme
	Result   *domain.ResultStyle
	Hovered  bool
	Loaded   bool
	Checkout string

	radius string
}

// buttonData feeds the shared "button" template.
type buttonData struct {
	Text     string
	URL      string
	Color    string
	Radius   string
	Checkout string
	Hovered  bool
}

// Button builds the data of a CTA button. An empty color uses the theme primary color.
func (d blockData[V]) Button(text, url, color string) buttonData {
	if color == "" {
		color = d.Theme.PrimaryColor
	}
	return buttonData{
		Text:     text,
		URL:      url,
		Color:    color,
		Radius:   d.radius,
		Checkout: d.Checkout,
		Hovered:  d.Hovered,
	}
}

// viewRenderer decodes content into V and executes the template called name.
type viewRenderer[V interface{ markdown() string }] struct {
	name    string
	prepare func(v *V, b domain.Block, rc *Context)
	variant func(v V) string
}

func (r *viewRenderer[V]) view(b domain.Block, rc *Context) (V, error) {
	var v V
	if err := decode(b.Content, &v); err != nil {
		return v, fmt.Errorf("decode %s content: %w", b.Type, err)
	}
	if r.prepare != nil {
		r.prepare(&v, b, rc)
	}
	return v, nil
}

func (r *viewRenderer[V]) Render(b domain.Block, rc *Context) (template.HTML, error) {
	v, err := r.view(b, rc)
	if err != nil {
		return "", err
	}
	var style styleView
	if err := decode(b.Style, &style); err != nil {
		return "", fmt.Errorf("decode %s style: %w", b.Type, err)
	}

	data := blockData[V]{
		ID:       b.ID,
		Type:     b.Type,
		V:        v,
		Style:    style.CSS(),
		Theme:    rc.theme(),
		Checkout: rc.checkout(b.ID),
		radius:   style.BorderRadius,
	}
	if rc != nil {
		data.Hovered = rc.Hovered == b.ID
		data.Loaded = rc.Loaded[b.ID]
	}
	if r.variant != nil {
		if rs, ok := rc.result(r.variant(v)); ok {
			data.Result = &rs
		}
	}

	var buf bytes.Buffer
	if err := blockTemplates.ExecuteTemplate(&buf, r.name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", b.Type, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *viewRenderer[V]) Markdown(b domain.Block, rc *Context) (string, error) {
	v, err := r.view(b, rc)
	if err != nil {
		return "", err
	}
	return v.markdown(), nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Placeholder renders blocks whose type has no renderer. It lists the type and the raw content.
type Placeholder struct{}

func (Placeholder) Render(b domain.Block, _ *Context) (template.HTML, error) {
	var buf bytes.Buffer
	err := blockTemplates.ExecuteTemplate(&buf, "placeholder", map[string]any{
		"ID":      b.ID,
		"Type":    b.Type,
		"Message": fmt.Sprintf("Block type %q is not implemented", b.Type),
		"Raw":     rawJSON(b.Content),
	})
	return template.HTML(buf.String()), err
}

func (Placeholder) Markdown(b domain.Block, _ *Context) (string, error) {
	return fmt.Sprintf("> Block type %q is not implemented\n\n```json\n%s\n```\n", b.Type, rawJSON(b.Content)), nil
}

func rawJSON(content map[string]any) string {
	raw, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(raw)
}
