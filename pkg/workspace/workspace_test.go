package workspace_test

import (
	"strings"
	"testing"

	"github.com/aretw0/lattice/pkg/blocklist"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/aretw0/lattice/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) *blocklist.List {
	t.Helper()
	reg := registry.Default()
	list := blocklist.New(blocklist.WithSchemas(reg.Schema))
	require.NoError(t, list.Replace([]domain.Block{
		{ID: "hero", Type: domain.BlockHero, Content: map[string]any{"title": "Welcome"}, Visible: true, Editable: false},
		{ID: "cta", Type: domain.BlockCTA, Visible: false, Editable: true},
		{ID: "odd", Type: "mystery", Visible: true, Editable: true},
	}))
	return list
}

func controls(v workspace.View, id string) []string {
	for _, n := range v.Tree {
		if n.ID == id {
			return n.Controls
		}
	}
	return nil
}

func TestBuild_FullEditor(t *testing.T) {
	list := fixture(t)
	ws := workspace.New(list, registry.Default())

	v := ws.Build("cta")

	assert.Len(t, v.Palette, len(registry.Default().Types()))
	require.Len(t, v.Tree, 3)
	assert.Equal(t, "Welcome", v.Tree[0].Label)
	assert.Equal(t, "Ready to get started?", v.Tree[1].Label)
	assert.Equal(t, "mystery", v.Tree[2].Label)
	assert.True(t, v.Tree[1].Selected)

	assert.NotContains(t, controls(v, "hero"), "delete", "non-editable blocks get no delete control")
	assert.NotContains(t, controls(v, "hero"), "move-up")
	assert.Contains(t, controls(v, "cta"), "delete")
	assert.Contains(t, controls(v, "cta"), "move-up")
	assert.NotContains(t, controls(v, "odd"), "move-down")

	require.NotNil(t, v.Properties)
	assert.Equal(t, "cta", v.Properties.BlockID)
}

func TestBuild_StaleSelection(t *testing.T) {
	list := fixture(t)
	ws := workspace.New(list, registry.Default())

	require.True(t, list.Delete("cta"))
	v := ws.Build("cta")

	assert.Nil(t, v.Properties)
	assert.Len(t, v.Tree, 2)
}

func TestBuild_ReadOnly(t *testing.T) {
	ws := workspace.New(fixture(t), registry.Default(), workspace.WithActions(workspace.ReadOnly))

	v := ws.Build("cta")

	assert.Empty(t, v.Palette)
	assert.Nil(t, v.Properties)
	for _, n := range v.Tree {
		assert.Empty(t, n.Controls)
	}
}

func TestBuild_RestrictedPaletteAndTemplates(t *testing.T) {
	tmpl := domain.Template{ID: "t1", Name: "Result page"}
	ws := workspace.New(fixture(t), registry.Default(),
		workspace.WithTypes(domain.BlockHeadline, domain.BlockText),
		workspace.WithTemplates([]domain.Template{tmpl}),
		workspace.WithActions(workspace.ActionSet{workspace.ActionAdd, workspace.ActionEdit}),
	)

	v := ws.Build("")

	require.Len(t, v.Palette, 2)
	assert.Equal(t, domain.BlockHeadline, v.Palette[0].Type)
	assert.Empty(t, v.Templates, "templates need the templates action")
	assert.Nil(t, v.Properties)
}

func TestBuild_Canvas(t *testing.T) {
	ws := workspace.New(fixture(t), registry.Default(),
		workspace.WithCanvas(render.NewContext(domain.Theme{}, render.ModeView)))

	v := ws.Build("")

	require.Len(t, v.Canvas, 3, "the canvas always shows hidden blocks")
	assert.Contains(t, string(v.Canvas[2].HTML), "mystery")
}

func TestLabel(t *testing.T) {
	long := strings.Repeat("word ", 20)
	label := workspace.Label(domain.Block{Content: map[string]any{"text": long}}, "Text")
	assert.LessOrEqual(t, len([]rune(label)), 40)
	assert.True(t, strings.HasSuffix(label, "…"))

	assert.Equal(t, "Spacer", workspace.Label(domain.Block{Content: map[string]any{}}, "Spacer"))
}
