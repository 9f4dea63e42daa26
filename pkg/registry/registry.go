package registry

import (
	"fmt"
	"html/template"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/editor"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/aretw0/lattice/pkg/schema"
)

// Entry binds a block type to its schema, property editor and renderer.
type Entry struct {
	Type     string
	Label    string
	Category string
	Icon     string
	Schema   schema.BlockSchema
	Editor   editor.Editor
	Renderer render.Renderer
}

// PaletteItem is what the builder palette shows for a type.
type PaletteItem struct {
	Type     string             `json:"type"`
	Label    string             `json:"label"`
	Category string             `json:"category"`
	Icon     string             `json:"icon"`
	Schema   schema.BlockSchema `json:"schema"`
}

// Registry manages the available block types. Registration order is the palette order.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds an entry. If the type exists, it is overwritten in place.
func (r *Registry) Register(e Entry) error {
	if e.Type == "" {
		return fmt.Errorf("register block type: empty type")
	}
	if e.Label == "" {
		e.Label = editor.Humanize(e.Type)
	}
	if e.Editor == nil {
		e.Editor = editor.New(e.Label, e.Schema)
	}
	if e.Renderer == nil {
		e.Renderer = render.Placeholder{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.Type]; !exists {
		r.order = append(r.order, e.Type)
	}
	r.entries[e.Type] = e
	return nil
}

// Lookup returns the entry of blockType.
func (r *Registry) Lookup(blockType string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[blockType]
	return e, ok
}

// Resolve is total: unknown types yield the fallback entry, whose renderer shows a
// "not implemented" placeholder and whose editor exposes the raw content as JSON.
func (r *Registry) Resolve(blockType string) Entry {
	if e, ok := r.Lookup(blockType); ok {
		return e
	}
	return Fallback(blockType)
}

// Fallback returns the entry used for unknown types.
func Fallback(blockType string) Entry {
	return Entry{
		Type:     blockType,
		Label:    blockType,
		Category: "unknown",
		Icon:     "?",
		Editor:   editor.Raw{},
		Renderer: render.Placeholder{},
	}
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Palette returns the palette items in registration order.
func (r *Registry) Palette() []PaletteItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PaletteItem, 0, len(r.order))
	for _, t := range r.order {
		e := r.entries[t]
		out = append(out, PaletteItem{
			Type:     e.Type,
			Label:    e.Label,
			Category: e.Category,
			Icon:     e.Icon,
			Schema:   e.Schema,
		})
	}
	return out
}

// Categories returns the distinct palette categories, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	for _, item := range r.Palette() {
		seen[item.Category] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Schema returns the declared schema of blockType (empty for unknown types).
// Its signature matches blocklist.SchemaFunc.
func (r *Registry) Schema(blockType string) schema.BlockSchema {
	e, _ := r.Lookup(blockType)
	return e.Schema
}

// Editor returns the property editor of blockType.
func (r *Registry) Editor(blockType string) editor.Editor {
	return r.Resolve(blockType).Editor
}

// Renderer implements render.Resolver. Content and style are defaulted from the schema
// before rendering, so blocks that bypassed the store still render with canonical values.
func (r *Registry) Renderer(blockType string) render.Renderer {
	e := r.Resolve(blockType)
	return defaulted{schema: e.Schema, next: e.Renderer}
}

// Form builds the property form of b.
func (r *Registry) Form(b domain.Block) editor.Form {
	return r.Editor(b.Type).Form(b)
}

type defaulted struct {
	schema schema.BlockSchema
	next   render.Renderer
}

func (d defaulted) fill(b domain.Block) domain.Block {
	b.Content = d.schema.FillContent(b.Content)
	b.Style = d.schema.FillStyle(b.Style)
	return b
}

func (d defaulted) Render(b domain.Block, rc *render.Context) (template.HTML, error) {
	return d.next.Render(d.fill(b), rc)
}

func (d defaulted) Markdown(b domain.Block, rc *render.Context) (string, error) {
	mr, ok := d.next.(render.MarkdownRenderer)
	if !ok {
		return render.Placeholder{}.Markdown(b, rc)
	}
	return mr.Markdown(d.fill(b), rc)
}
