package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// Templates implements ports.TemplateSource over a fixed list.
type Templates struct {
	templates []domain.Template
}

// NewTemplates creates a template source from domain objects.
func NewTemplates(templates ...domain.Template) (*Templates, error) {
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template missing ID")
		}
	}
	return &Templates{templates: templates}, nil
}

// ListTemplates returns the templates in the order they were given.
func (s *Templates) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	out := make([]domain.Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t
		out[i].Blocks = make([]domain.Block, len(t.Blocks))
		for j, b := range t.Blocks {
			out[i].Blocks[j] = b.Clone()
		}
	}
	return out, nil
}
