package editor

import (
	"strings"
	"unicode"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

// SchemaEditor builds forms generically from a block schema.
// Per-type editors decorate it with labels, control kinds and presets.
type SchemaEditor struct {
	title   string
	schema  schema.BlockSchema
	labels  map[string]string
	kinds   map[string]Kind
	presets []Preset
}

// Option configures a SchemaEditor.
type Option func(*SchemaEditor)

// WithLabel overrides the label of a field (content or style).
func WithLabel(key, label string) Option {
	return func(e *SchemaEditor) {
		e.labels[key] = label
	}
}

// WithKind overrides the control of a field, e.g. textarea for long text.
func WithKind(kind Kind, keys ...string) Option {
	return func(e *SchemaEditor) {
		for _, k := range keys {
			e.kinds[k] = kind
		}
	}
}

// WithPresets registers quick templates.
func WithPresets(presets ...Preset) Option {
	return func(e *SchemaEditor) {
		e.presets = append(e.presets, presets...)
	}
}

// New creates an editor for the schema s.
func New(title string, s schema.BlockSchema, opts ...Option) *SchemaEditor {
	e := &SchemaEditor{
		title:  title,
		schema: s,
		labels: make(map[string]string),
		kinds:  make(map[string]Kind),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Presets returns the quick templates of the editor.
func (e *SchemaEditor) Presets() []Preset {
	return e.presets
}

// Form binds every declared field to the block. Absent keys yield the schema default,
// so the form always shows the same value the renderer uses.
func (e *SchemaEditor) Form(b domain.Block) Form {
	content := e.schema.FillContent(b.Content)
	style := e.schema.FillStyle(b.Style)

	fields := make([]Field, 0, len(e.schema.Content)+len(e.schema.Style))
	for _, f := range e.schema.Content {
		fields = append(fields, e.field(f, ScopeContent, content[f.Key]))
	}
	for _, f := range e.schema.Style {
		fields = append(fields, e.field(f, ScopeStyle, style[f.Key]))
	}

	return Form{
		BlockID: b.ID,
		Type:    b.Type,
		Title:   e.title,
		Fields:  fields,
		Presets: e.presets,
	}
}

func (e *SchemaEditor) field(f schema.Field, scope Scope, value any) Field {
	out := Field{
		Key:   f.Key,
		Scope: scope,
		Label: e.label(f.Key),
		Kind:  e.kind(f),
		Value: value,
	}
	if enum, ok := f.Type.(*schema.EnumType); ok {
		out.Options = enum.Options()
	}
	if st, ok := f.Type.(*schema.SliceType); ok {
		if obj, ok := st.Elem().(*schema.ObjectType); ok {
			for _, item := range obj.Fields() {
				out.ItemFields = append(out.ItemFields, e.field(item, scope, item.Default))
			}
		}
	}
	return out
}

func (e *SchemaEditor) label(key string) string {
	if l, ok := e.labels[key]; ok {
		return l
	}
	return Humanize(key)
}

func (e *SchemaEditor) kind(f schema.Field) Kind {
	if k, ok := e.kinds[f.Key]; ok {
		return k
	}
	switch t := f.Type.(type) {
	case *schema.IntType, *schema.NumberType:
		return KindNumber
	case *schema.BoolType:
		return KindToggle
	case *schema.EnumType:
		return KindSelect
	case *schema.SliceType:
		return KindList
	default:
		if schema.IsColor(t) {
			return KindColor
		}
	}
	lower := strings.ToLower(f.Key)
	if strings.HasSuffix(lower, "url") {
		return KindURL
	}
	return KindText
}

// Humanize turns a camelCase key into a label: "buttonText" -> "Button text".
func Humanize(key string) string {
	var sb strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			sb.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			sb.WriteRune(' ')
			sb.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_':
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
