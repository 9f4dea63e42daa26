package editor

import "github.com/aretw0/lattice/pkg/domain"

// Kind is the control used to edit a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindURL      Kind = "url"
	KindNumber   Kind = "number"
	KindColor    Kind = "color"
	KindSelect   Kind = "select"
	KindToggle   Kind = "toggle"
	KindList     Kind = "list"
	KindJSON     Kind = "json"
)

// Scope tells which bag of the block a field is bound to.
type Scope string

const (
	ScopeContent Scope = "content"
	ScopeStyle   Scope = "style"
)

// Field is one control of a property form.
type Field struct {
	Key        string   `json:"key"`
	Scope      Scope    `json:"scope"`
	Label      string   `json:"label"`
	Kind       Kind     `json:"kind"`
	Value      any      `json:"value"`
	Options    []string `json:"options,omitempty"`
	ItemFields []Field  `json:"itemFields,omitempty"`
}

// Preset is a named "quick template": a literal patch that sets several fields at once.
type Preset struct {
	Name    string         `json:"name"`
	Content map[string]any `json:"content,omitempty"`
	Style   map[string]any `json:"style,omitempty"`
}

// Patch returns the preset as a patch. The maps are copied.
func (p Preset) Patch() domain.Patch {
	out := domain.Patch{}
	if len(p.Content) > 0 {
		out.Content = domain.CopyMap(p.Content)
	}
	if len(p.Style) > 0 {
		out.Style = domain.CopyMap(p.Style)
	}
	return out
}

// Form is the property form of one block.
type Form struct {
	BlockID string   `json:"blockId"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Fields  []Field  `json:"fields"`
	Presets []Preset `json:"presets,omitempty"`
}

// Field returns the form field bound to key in scope.
func (f Form) Field(scope Scope, key string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Scope == scope && fd.Key == key {
			return fd, true
		}
	}
	return Field{}, false
}

// Editor builds the property form of a block type.
type Editor interface {
	Form(b domain.Block) Form
	Presets() []Preset
}

// ApplyPreset returns the patch of the preset called name.
func ApplyPreset(ed Editor, name string) (domain.Patch, bool) {
	if ed == nil {
		return domain.Patch{}, false
	}
	for _, p := range ed.Presets() {
		if p.Name == name {
			return p.Patch(), true
		}
	}
	return domain.Patch{}, false
}
