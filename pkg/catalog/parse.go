package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"gopkg.in/yaml.v3"
)

type templateYAML struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Category    string      `yaml:"category"`
	Description string      `yaml:"description"`
	Blocks      []blockYAML `yaml:"blocks"`
}

// blockYAML leaves visibility and editability optional; both default to true.
type blockYAML struct {
	Type     string         `yaml:"type"`
	Content  map[string]any `yaml:"content"`
	Style    map[string]any `yaml:"style"`
	Visible  *bool          `yaml:"visible"`
	Editable *bool          `yaml:"editable"`
}

// Parse decodes a YAML list of templates.
func Parse(data []byte) ([]domain.Template, error) {
	var raw []templateYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	out := make([]domain.Template, 0, len(raw))
	for _, r := range raw {
		t, err := r.template()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r templateYAML) template() (domain.Template, error) {
	if r.ID == "" {
		return domain.Template{}, fmt.Errorf("template %q has no id", r.Name)
	}
	t := domain.Template{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Blocks:      make([]domain.Block, 0, len(r.Blocks)),
	}
	for i, b := range r.Blocks {
		if b.Type == "" {
			return domain.Template{}, fmt.Errorf("%w: template %s block %d has no type", domain.ErrInvalidBlock, r.ID, i)
		}
		t.Blocks = append(t.Blocks, domain.Block{
			ID:       fmt.Sprintf("%s-%d", r.ID, i),
			Type:     b.Type,
			Content:  Normalize(b.Content),
			Style:    Normalize(b.Style),
			Order:    i,
			Visible:  b.Visible == nil || *b.Visible,
			Editable: b.Editable == nil || *b.Editable,
		})
	}
	return t, nil
}

// Normalize converts a YAML-decoded bag into its JSON shape: integers and json.Number become float64,
// so that blocks compare equal after a JSON round-trip.
func Normalize(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return Normalize(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
