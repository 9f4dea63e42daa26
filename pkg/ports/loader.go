package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// TemplateSource defines where additional templates come from.
// This allows the catalog to be extended without recompiling (Loam, files, memory).
type TemplateSource interface {
	// ListTemplates returns every template of the source.
	ListTemplates(ctx context.Context) ([]domain.Template, error)
}
