package editor

import (
	"encoding/json"

	"github.com/aretw0/lattice/pkg/domain"
)

// Raw is the editor of unknown block types: the whole content as one JSON field.
type Raw struct{}

func (Raw) Presets() []Preset { return nil }

func (Raw) Form(b domain.Block) Form {
	raw, err := json.MarshalIndent(domain.CopyMap(b.Content), "", "  ")
	if err != nil {
		raw = []byte("{}")
	}
	return Form{
		BlockID: b.ID,
		Type:    b.Type,
		Title:   "Unknown block: " + b.Type,
		Fields: []Field{{
			Key:   "content",
			Scope: ScopeContent,
			Label: "Raw content",
			Kind:  KindJSON,
			Value: string(raw),
		}},
	}
}

// ParseRaw turns the value of the Raw editor back into a content patch.
func ParseRaw(value string) (domain.Patch, error) {
	var content map[string]any
	if err := json.Unmarshal([]byte(value), &content); err != nil {
		return domain.Patch{}, err
	}
	return domain.Patch{Content: content}, nil
}
