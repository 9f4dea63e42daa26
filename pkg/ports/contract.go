package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPageStoreContract runs a suite of tests to verify that a PageStore implementation
// adheres to the defined interface contract.
func RunPageStoreContract(t *testing.T, store PageStore) {
	ctx := context.Background()
	pageID := "contract-test-page-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		page := domain.NewPage(pageID)
		page.Name = "Contract"
		page.Blocks = []domain.Block{
			{
				ID:       "headline-1",
				Type:     domain.BlockHeadline,
				Content:  map[string]any{"title": "Hello", "level": "h1"},
				Style:    map[string]any{"padding": "16px"},
				Order:    0,
				Visible:  true,
				Editable: true,
			},
			{
				ID:   "faq-1",
				Type: domain.BlockFAQ,
				Content: map[string]any{
					"items": []any{map[string]any{"question": "Q", "answer": "A"}},
					"count": 2.5,
				},
				Style:    map[string]any{},
				Order:    1,
				Visible:  false,
				Editable: false,
			},
		}

		err := store.Save(ctx, page)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, page.ID, loaded.ID)
		assert.Equal(t, page.Name, loaded.Name)
		assert.Equal(t, page.Theme, loaded.Theme)
		// Blocks must round-trip losslessly, including hidden and non-editable flags.
		assert.Equal(t, page.Blocks, loaded.Blocks)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		page := domain.NewPage(pageID)
		page.Blocks = []domain.Block{{ID: "only", Type: domain.BlockText, Content: map[string]any{}, Style: map[string]any{}, Visible: true}}
		require.NoError(t, store.Save(ctx, page))

		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err)
		require.Len(t, loaded.Blocks, 1)
		assert.Equal(t, "only", loaded.Blocks[0].ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+pageID)
		assert.ErrorIs(t, err, domain.ErrPageNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewPage(pageID))
		require.NoError(t, err)

		err = store.Delete(ctx, pageID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, pageID)
		assert.ErrorIs(t, err, domain.ErrPageNotFound, "Load after Delete should return ErrPageNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := pageID + "-1"
		id2 := pageID + "-2"
		_ = store.Save(ctx, domain.NewPage(id1))
		_ = store.Save(ctx, domain.NewPage(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		pages, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, pages, id1)
		assert.Contains(t, pages, id2)
	})
}
