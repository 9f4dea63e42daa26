package dsl

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// TemplateBuilder provides a fluent API for configuring a template.
type TemplateBuilder struct {
	tmpl    domain.Template
	blocks  []*BlockBuilder
	builder *Builder
}

// Name sets the display name.
func (t *TemplateBuilder) Name(name string) *TemplateBuilder {
	t.tmpl.Name = name
	return t
}

// Category sets the catalog category.
func (t *TemplateBuilder) Category(category string) *TemplateBuilder {
	t.tmpl.Category = category
	return t
}

// Description sets the text matched by catalog searches.
func (t *TemplateBuilder) Description(description string) *TemplateBuilder {
	t.tmpl.Description = description
	return t
}

// Block appends a visible, editable block of the given type.
func (t *TemplateBuilder) Block(blockType string) *BlockBuilder {
	bb := &BlockBuilder{
		block: domain.Block{
			Type:     blockType,
			Content:  map[string]any{},
			Style:    map[string]any{},
			Visible:  true,
			Editable: true,
		},
		tmpl: t,
	}
	t.blocks = append(t.blocks, bb)
	return bb
}

// Build returns the template. Block ids are "<template>-<index>".
func (t *TemplateBuilder) Build() (domain.Template, error) {
	out := t.tmpl
	if len(t.blocks) == 0 {
		return domain.Template{}, fmt.Errorf("template %s has no blocks", out.ID)
	}
	out.Blocks = make([]domain.Block, 0, len(t.blocks))
	for i, bb := range t.blocks {
		if bb.block.Type == "" {
			return domain.Template{}, fmt.Errorf("%w: template %s block %d has no type", domain.ErrInvalidBlock, out.ID, i)
		}
		b := bb.block.Clone()
		b.ID = fmt.Sprintf("%s-%d", out.ID, i)
		b.Order = i
		out.Blocks = append(out.Blocks, b)
	}
	return out, nil
}
