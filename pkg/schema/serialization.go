package schema

import (
	"encoding/json"
)

type fieldJSON struct {
	Key     string      `json:"key"`
	Type    string      `json:"type"`
	Default any         `json:"default"`
	Options []string    `json:"options,omitempty"`
	Item    []fieldJSON `json:"item,omitempty"`
}

// MarshalJSON describes the field for clients (palette, form builders).
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(describe(f))
}

func describe(f Field) fieldJSON {
	out := fieldJSON{Key: f.Key, Default: f.Default}
	if f.Type != nil {
		out.Type = f.Type.Name()
	}
	if enum, ok := f.Type.(*EnumType); ok {
		out.Options = enum.Options()
	}
	if obj := itemObject(f); obj != nil {
		out.Type = "list"
		for _, item := range obj.fields {
			out.Item = append(out.Item, describe(item))
		}
	}
	return out
}

// MarshalJSON serializes the block schema as {"content": [...], "style": [...]}.
func (s BlockSchema) MarshalJSON() ([]byte, error) {
	type alias struct {
		Content []Field `json:"content"`
		Style   []Field `json:"style"`
	}
	return json.Marshal(alias{Content: s.Content, Style: s.Style})
}
