package loam

// TemplateMetadata is the frontmatter of a template document.
// A Markdown body, when present, becomes the description if none is given.
type TemplateMetadata struct {
	ID          string          `json:"id" mapstructure:"id"`
	Name        string          `json:"name" mapstructure:"name"`
	Category    string          `json:"category" mapstructure:"category"`
	Description string          `json:"description" mapstructure:"description"`
	Blocks      []BlockMetadata `json:"blocks" mapstructure:"blocks"`
}

// BlockMetadata describes one block of a template.
// Visible and Editable default to true when omitted.
type BlockMetadata struct {
	Type     string         `json:"type" mapstructure:"type"`
	Content  map[string]any `json:"content" mapstructure:"content"`
	Style    map[string]any `json:"style" mapstructure:"style"`
	Visible  *bool          `json:"visible,omitempty" mapstructure:"visible"`
	Editable *bool          `json:"editable,omitempty" mapstructure:"editable"`
}
