// Package workspace builds the builder screen: palette, block tree, canvas and property form.
//
// There is one workspace for every kind of editor (landing pages, quiz results, funnels).
// What differs between them is the data source and the set of actions offered, both of
// which are configuration.
package workspace

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/editor"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/render"
)

// Source supplies the blocks shown in the workspace.
type Source interface {
	Blocks() []domain.Block
}

// Action is a user action the workspace may offer.
type Action string

const (
	ActionAdd       Action = "add"
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
	ActionReorder   Action = "reorder"
	ActionToggle    Action = "toggle"
	ActionTemplates Action = "templates"
	ActionEdit      Action = "edit"
)

// ActionSet is the set of actions a workspace offers.
type ActionSet []Action

// AllActions enables everything.
var AllActions = ActionSet{ActionAdd, ActionDelete, ActionDuplicate, ActionReorder, ActionToggle, ActionTemplates, ActionEdit}

// ReadOnly only lets the user inspect blocks.
var ReadOnly = ActionSet{}

// Has reports whether a is enabled.
func (s ActionSet) Has(a Action) bool {
	return slices.Contains(s, a)
}

// Node is one row of the block tree.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Index    int      `json:"index"`
	Visible  bool     `json:"visible"`
	Editable bool     `json:"editable"`
	Selected bool     `json:"selected"`
	Controls []string `json:"controls"`
}

// View is the state of the workspace for one selection.
type View struct {
	Palette    []registry.PaletteItem `json:"palette"`
	Templates  []domain.Template      `json:"templates,omitempty"`
	Tree       []Node                 `json:"tree"`
	Canvas     []render.RenderedBlock `json:"canvas,omitempty"`
	Properties *editor.Form           `json:"properties"`
	Actions    ActionSet              `json:"actions"`
}

// Workspace is a configured builder screen.
type Workspace struct {
	source    Source
	registry  *registry.Registry
	actions   ActionSet
	types     []string
	templates []domain.Template
	render    *render.Context
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithActions restricts the offered actions. The default is AllActions.
func WithActions(actions ActionSet) Option {
	return func(w *Workspace) {
		w.actions = actions
	}
}

// WithTypes restricts the palette to the given block types.
func WithTypes(types ...string) Option {
	return func(w *Workspace) {
		w.types = types
	}
}

// WithTemplates lists templates offered when ActionTemplates is enabled.
func WithTemplates(templates []domain.Template) Option {
	return func(w *Workspace) {
		w.templates = templates
	}
}

// WithCanvas renders the blocks in edit mode using rc.
func WithCanvas(rc *render.Context) Option {
	return func(w *Workspace) {
		w.render = rc
	}
}

// New creates a workspace over source.
func New(source Source, reg *registry.Registry, opts ...Option) *Workspace {
	w := &Workspace{
		source:   source,
		registry: reg,
		actions:  AllActions,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Build returns the view with the block selected by id. A stale or empty selection
// yields no property form.
func (w *Workspace) Build(selected string) View {
	blocks := w.source.Blocks()
	v := View{
		Palette: []registry.PaletteItem{},
		Tree:    make([]Node, 0, len(blocks)),
		Actions: w.actions,
	}

	if w.actions.Has(ActionAdd) {
		for _, item := range w.registry.Palette() {
			if len(w.types) == 0 || slices.Contains(w.types, item.Type) {
				v.Palette = append(v.Palette, item)
			}
		}
	}
	if w.actions.Has(ActionTemplates) {
		v.Templates = w.templates
	}

	for i, b := range blocks {
		v.Tree = append(v.Tree, w.node(b, i, len(blocks), b.ID == selected))
		if b.ID == selected && selected != "" && w.actions.Has(ActionEdit) {
			form := w.registry.Form(b)
			v.Properties = &form
		}
	}

	if w.render != nil {
		rc := *w.render
		rc.Mode = render.ModeEdit
		v.Canvas = render.Blocks(blocks, w.registry, &rc)
	}
	return v
}

func (w *Workspace) node(b domain.Block, index, total int, selected bool) Node {
	e := w.registry.Resolve(b.Type)
	n := Node{
		ID:       b.ID,
		Type:     b.Type,
		Label:    Label(b, e.Label),
		Icon:     e.Icon,
		Index:    index,
		Visible:  b.Visible,
		Editable: b.Editable,
		Selected: selected,
		Controls: []string{},
	}
	if w.actions.Has(ActionReorder) {
		if index > 0 {
			n.Controls = append(n.Controls, "move-up")
		}
		if index < total-1 {
			n.Controls = append(n.Controls, "move-down")
		}
	}
	if w.actions.Has(ActionToggle) {
		n.Controls = append(n.Controls, string(ActionToggle))
	}
	if w.actions.Has(ActionDuplicate) {
		n.Controls = append(n.Controls, string(ActionDuplicate))
	}
	if w.actions.Has(ActionDelete) && b.Editable {
		n.Controls = append(n.Controls, string(ActionDelete))
	}
	return n
}

const maxLabel = 40

// Label picks a short human label for a block: its title or text, else the type label.
func Label(b domain.Block, fallback string) string {
	for _, key := range []string{"title", "text", "quote", "buttonText"} {
		if s, ok := b.Content[key].(string); ok && strings.TrimSpace(s) != "" {
			s = strings.Join(strings.Fields(s), " ")
			if utf8.RuneCountInString(s) > maxLabel {
				r := []rune(s)
				s = string(r[:maxLabel-1]) + "…"
			}
			return s
		}
	}
	return fallback
}
