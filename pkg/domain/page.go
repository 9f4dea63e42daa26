package domain

import "time"

// Page is the unit persisted by a PageStore: an ordered list of blocks and its theme.
type Page struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Theme     Theme     `json:"theme" yaml:"theme"`
	Blocks    []Block   `json:"blocks" yaml:"blocks"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewPage creates an empty page with the default theme.
func NewPage(id string) *Page {
	return &Page{
		ID:     id,
		Name:   id,
		Theme:  DefaultTheme(),
		Blocks: []Block{},
	}
}

// Snapshot returns a deep copy of the page.
func (p *Page) Snapshot() *Page {
	if p == nil {
		return nil
	}
	out := *p
	out.Blocks = make([]Block, len(p.Blocks))
	for i, b := range p.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return &out
}
