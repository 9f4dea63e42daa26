package catalog_test

import (
	"testing"

	"github.com/aretw0/lattice/pkg/catalog"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ts []domain.Template) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestBuiltin(t *testing.T) {
	c, err := catalog.Builtin()
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)

	reg := registry.Default()
	for _, tmpl := range all {
		assert.NotEmpty(t, tmpl.Name)
		assert.NotEmpty(t, tmpl.Blocks, tmpl.ID)
		for _, b := range tmpl.Blocks {
			_, known := reg.Lookup(b.Type)
			assert.True(t, known, "template %s uses unknown type %s", tmpl.ID, b.Type)
			assert.NoError(t, reg.Schema(b.Type).Validate(b.Content, b.Style), "template %s block %s", tmpl.ID, b.ID)
		}
	}
}

func TestBuiltin_Defaults(t *testing.T) {
	c, err := catalog.Builtin()
	require.NoError(t, err)

	tour, err := c.Get("product-tour")
	require.NoError(t, err)
	last := tour.Blocks[len(tour.Blocks)-1]
	assert.False(t, last.Editable)
	assert.True(t, last.Visible)

	webinar, err := c.Get("webinar")
	require.NoError(t, err)
	assert.Equal(t, 60.0, webinar.Blocks[1].Content["minutes"], "YAML integers are normalized to float64")
}

func TestSearch(t *testing.T) {
	c := catalog.New(
		domain.Template{ID: "a", Name: "Sales Page", Category: "sales", Description: "Long form"},
		domain.Template{ID: "b", Name: "Quiz result", Category: "quiz", Description: "Personalized SALES pitch"},
		domain.Template{ID: "c", Name: "Lead capture", Category: "leads", Description: "Email opt-in"},
	)

	tests := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{name: "everything", query: "", category: "", want: []string{"a", "b", "c"}},
		{name: "all category", query: "", category: "all", want: []string{"a", "b", "c"}},
		{name: "case insensitive over name and description", query: "sales", category: "all", want: []string{"a", "b"}},
		{name: "category exact match", query: "sales", category: "quiz", want: []string{"b"}},
		{name: "no partial category", query: "", category: "lead", want: []string{}},
		{name: "no match", query: "zzz", category: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Search(tt.query, tt.category)))
		})
	}
	assert.Equal(t, []string{"leads", "quiz", "sales"}, c.Categories())
}

func TestGet(t *testing.T) {
	c := catalog.New(domain.Template{ID: "a", Blocks: []domain.Block{{ID: "x", Type: "text", Content: map[string]any{"text": "hi"}}}})

	got, err := c.Get("a")
	require.NoError(t, err)
	got.Blocks[0].Content["text"] = "mutated"

	again, _ := c.Get("a")
	assert.Equal(t, "hi", again.Blocks[0].Content["text"])

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestAddReplacesByID(t *testing.T) {
	c := catalog.New(domain.Template{ID: "a", Name: "old"})
	c.Add(domain.Template{ID: "a", Name: "new"}, domain.Template{ID: "b"})

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].Name)
}

func TestParseErrors(t *testing.T) {
	_, err := catalog.Parse([]byte("- name: no id\n"))
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("- id: x\n  blocks:\n    - content: {}\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidBlock)

	_, err = catalog.Parse([]byte("{not: [a list"))
	assert.Error(t, err)
}
