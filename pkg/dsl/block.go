package dsl

import "github.com/aretw0/lattice/pkg/domain"

// BlockBuilder provides a fluent API for configuring a block of a template.
type BlockBuilder struct {
	block domain.Block
	tmpl  *TemplateBuilder
}

// Set stores a content key.
func (b *BlockBuilder) Set(key string, value any) *BlockBuilder {
	b.block.Content[key] = normalize(value)
	return b
}

// Style stores a style override.
func (b *BlockBuilder) Style(key string, value any) *BlockBuilder {
	b.block.Style[key] = normalize(value)
	return b
}

// Hidden excludes the block from the published page.
func (b *BlockBuilder) Hidden() *BlockBuilder {
	b.block.Visible = false
	return b
}

// Locked protects the block from deletion.
func (b *BlockBuilder) Locked() *BlockBuilder {
	b.block.Editable = false
	return b
}

// Block continues the template with another block.
func (b *BlockBuilder) Block(blockType string) *BlockBuilder {
	return b.tmpl.Block(blockType)
}

// Done returns to the template.
func (b *BlockBuilder) Done() *TemplateBuilder {
	return b.tmpl
}

// normalize gives Go integers their JSON shape so templates survive a store round-trip.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}
