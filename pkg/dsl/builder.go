package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
)

// Builder manages the template set construction.
type Builder struct {
	order     []string
	templates map[string]*TemplateBuilder
}

// New creates a new template set builder.
func New() *Builder {
	return &Builder{
		templates: make(map[string]*TemplateBuilder),
	}
}

// Template starts a template. If the template already exists, it returns the existing builder.
func (b *Builder) Template(id string) *TemplateBuilder {
	if tb, ok := b.templates[id]; ok {
		return tb
	}
	tb := &TemplateBuilder{
		tmpl:    domain.Template{ID: id, Name: id},
		builder: b,
	}
	b.templates[id] = tb
	b.order = append(b.order, id)
	return tb
}

// Templates returns every template in declaration order.
func (b *Builder) Templates() ([]domain.Template, error) {
	out := make([]domain.Template, 0, len(b.order))
	var errs []error
	for _, id := range b.order {
		t, err := b.templates[id].Build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Build compiles the templates into a memory template source.
func (b *Builder) Build() (*memory.Templates, error) {
	templates, err := b.Templates()
	if err != nil {
		return nil, err
	}
	source, err := memory.NewTemplates(templates...)
	if err != nil {
		return nil, fmt.Errorf("failed to build template source: %w", err)
	}
	return source, nil
}
