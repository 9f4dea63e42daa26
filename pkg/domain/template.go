package domain

// CategoryAll matches every template category in catalog searches.
const CategoryAll = "all"

// Template is a named, pre-authored bundle of blocks appended together.
type Template struct {
	ID          string  `json:"id" yaml:"id" mapstructure:"id"`
	Name        string  `json:"name" yaml:"name" mapstructure:"name"`
	Category    string  `json:"category" yaml:"category" mapstructure:"category"`
	Description string  `json:"description" yaml:"description" mapstructure:"description"`
	Blocks      []Block `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
}
