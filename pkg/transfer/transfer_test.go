package transfer_test

import (
	"strings"
	"testing"

	"github.com/aretw0/lattice/pkg/blocklist"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	reg := registry.Default()
	list := blocklist.New(blocklist.WithSchemas(reg.Schema))
	list.Add(domain.BlockHeadline)
	faq := list.Add(domain.BlockFAQ)
	list.Add(domain.BlockPricing)
	list.ToggleVisibility(faq)
	require.NoError(t, list.Replace(append(list.Blocks(), domain.Block{
		ID: "locked", Type: domain.BlockHero, Visible: true, Editable: false,
	})))

	original := list.Blocks()
	data, err := transfer.Export(original)
	require.NoError(t, err)

	imported, err := transfer.Import(data)
	require.NoError(t, err)
	assert.Equal(t, original, imported)
}

func TestExportIsPretty(t *testing.T) {
	data, err := transfer.Export([]domain.Block{{ID: "a", Type: "text"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"a\""))

	empty, err := transfer.Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "not json", data: `{"id":`, want: transfer.ErrInvalidJSON},
		{name: "object", data: `{"id":"a"}`, want: transfer.ErrNotArray},
		{name: "string", data: `"blocks"`, want: transfer.ErrNotArray},
		{name: "null", data: `null`, want: transfer.ErrNotArray},
		{name: "scalar entry", data: `[1]`, want: domain.ErrInvalidBlock},
		{name: "missing id", data: `[{"type":"text"}]`, want: domain.ErrInvalidBlock},
		{name: "missing type", data: `[{"id":"a"}]`, want: domain.ErrInvalidBlock},
		{name: "duplicate id", data: `[{"id":"a","type":"text"},{"id":"a","type":"cta"}]`, want: domain.ErrInvalidBlock},
		{name: "wrong field type", data: `[{"id":"a","type":"text","order":"first"}]`, want: domain.ErrInvalidBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := transfer.Import([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, blocks)
		})
	}
}

func TestImportEmptyArray(t *testing.T) {
	blocks, err := transfer.Import([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestImportLeavesListUntouchedOnError(t *testing.T) {
	list := blocklist.New()
	id := list.Add(domain.BlockText)

	if blocks, err := transfer.Import([]byte(`{"not":"an array"}`)); err == nil {
		require.NoError(t, list.Replace(blocks))
	}

	require.Equal(t, 1, list.Len())
	b, _ := list.Get(id)
	assert.Equal(t, 0, b.Order)
}
