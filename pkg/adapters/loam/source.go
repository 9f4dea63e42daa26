// Package loam reads templates from a Loam repository: one document per template,
// with the blocks declared in the frontmatter (Markdown) or the document body (JSON/YAML).
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/catalog"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/loam"
)

// Source adapts a Loam repository to ports.TemplateSource.
type Source struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a template source over an existing typed repository.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only Loam repository at path.
// Strict mode keeps numbers as json.Number so integers survive untouched.
func Open(path string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// ListTemplates implements ports.TemplateSource. Templates are sorted by id.
func (s *Source) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	templates := make([]domain.Template, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		tmpl, err := buildTemplate(id, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func buildTemplate(id string, meta TemplateMetadata, body string) (domain.Template, error) {
	t := domain.Template{
		ID:          id,
		Name:        meta.Name,
		Category:    meta.Category,
		Description: meta.Description,
		Blocks:      make([]domain.Block, 0, len(meta.Blocks)),
	}
	if t.Name == "" {
		t.Name = id
	}
	if t.Description == "" {
		t.Description = strings.TrimSpace(body)
	}

	for i, b := range meta.Blocks {
		if b.Type == "" {
			return domain.Template{}, fmt.Errorf("%w: template %s block %d has no type", domain.ErrInvalidBlock, id, i)
		}
		t.Blocks = append(t.Blocks, domain.Block{
			ID:       fmt.Sprintf("%s-%d", id, i),
			Type:     b.Type,
			Content:  catalog.Normalize(b.Content),
			Style:    catalog.Normalize(b.Style),
			Order:    i,
			Visible:  b.Visible == nil || *b.Visible,
			Editable: b.Editable == nil || *b.Editable,
		})
	}
	return t, nil
}

// Watch reports the ids of changed template documents until ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
