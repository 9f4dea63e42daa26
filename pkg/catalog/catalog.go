// Package catalog holds the template collaborator: named bundles of pre-filled blocks,
// searchable by free text and category.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Catalog is a set of templates. Safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	templates []domain.Template
}

// New creates a catalog holding templates.
func New(templates ...domain.Template) *Catalog {
	c := &Catalog{}
	c.Add(templates...)
	return c
}

// Builtin returns a catalog with the templates shipped with Lattice.
func Builtin() (*Catalog, error) {
	templates, err := Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin templates: %w", err)
	}
	return New(templates...), nil
}

// Add inserts templates. A template with a known id replaces the previous one.
func (c *Catalog) Add(templates ...domain.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range templates {
		i := slices.IndexFunc(c.templates, func(x domain.Template) bool { return x.ID == t.ID })
		if i >= 0 {
			c.templates[i] = t
			continue
		}
		c.templates = append(c.templates, t)
	}
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (domain.Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.templates {
		if t.ID == id {
			return cloneTemplate(t), nil
		}
	}
	return domain.Template{}, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
}

// All returns every template in insertion order.
func (c *Catalog) All() []domain.Template {
	return c.Search("", domain.CategoryAll)
}

// Search filters templates by a case-insensitive substring over name and description,
// and by category: an exact match, or every category for "" and "all".
func (c *Catalog) Search(query, category string) []domain.Template {
	q := strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []domain.Template{}
	for _, t := range c.templates {
		if category != "" && category != domain.CategoryAll && t.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Name+" "+t.Description), q) {
			continue
		}
		out = append(out, cloneTemplate(t))
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range c.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}

func cloneTemplate(t domain.Template) domain.Template {
	out := t
	out.Blocks = make([]domain.Block, len(t.Blocks))
	for i, b := range t.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}
