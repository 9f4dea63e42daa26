package schema

import "github.com/aretw0/lattice/pkg/domain"

// Field declares one key of a content or style bag.
type Field struct {
	Key     string
	Type    Type
	Default any
}

// BlockSchema declares the content and style fields of one block type.
type BlockSchema struct {
	Content []Field
	Style   []Field
}

// Lookup returns the content field named key.
func (s BlockSchema) Lookup(key string) (Field, bool) {
	return lookup(s.Content, key)
}

// LookupStyle returns the style field named key.
func (s BlockSchema) LookupStyle(key string) (Field, bool) {
	return lookup(s.Style, key)
}

// FillContent returns a copy of content with every absent field set to its default.
func (s BlockSchema) FillContent(content map[string]any) map[string]any {
	return Fill(s.Content, content)
}

// FillStyle returns a copy of style with every absent field set to its default.
func (s BlockSchema) FillStyle(style map[string]any) map[string]any {
	return Fill(s.Style, style)
}

// Validate checks the keys present in content and style against the schema.
func (s BlockSchema) Validate(content, style map[string]any) error {
	var errs []error
	if err := Validate(s.Content, content); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}
	if err := Validate(s.Style, style); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// NewItem returns a default-shaped entry for the list field key, or nil when key
// is not a list of objects.
func (s BlockSchema) NewItem(key string) map[string]any {
	f, ok := s.Lookup(key)
	if !ok {
		return nil
	}
	obj := itemObject(f)
	if obj == nil {
		return nil
	}
	return Fill(obj.fields, nil)
}

// Fill returns a copy of data with every absent field set to a copy of its default.
// Items of object lists are filled as well. Keys not declared by fields are kept.
func Fill(fields []Field, data map[string]any) map[string]any {
	out := domain.CopyMap(data)
	for _, f := range fields {
		v, ok := out[f.Key]
		if !ok || v == nil {
			out[f.Key] = domain.CopyValue(f.Default)
			continue
		}
		if obj := itemObject(f); obj != nil {
			if items, ok := v.([]any); ok {
				for i, item := range items {
					if m, ok := item.(map[string]any); ok {
						items[i] = Fill(obj.fields, m)
					}
				}
			}
		}
	}
	return out
}

// Validate checks only the keys present in data. Missing fields are not errors,
// since they are defaulted by Fill, and undeclared keys are accepted.
func Validate(fields []Field, data map[string]any) error {
	var errs []error
	for _, f := range fields {
		value, exists := data[f.Key]
		if !exists || value == nil || f.Type == nil {
			continue
		}
		if err := f.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    f.Key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func lookup(fields []Field, key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func itemObject(f Field) *ObjectType {
	st, ok := f.Type.(*SliceType)
	if !ok {
		return nil
	}
	obj, _ := st.elemType.(*ObjectType)
	return obj
}
