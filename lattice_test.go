package lattice_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/checkout"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dragdrop"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/aretw0/lattice/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T, opts ...lattice.Option) *lattice.Builder {
	t.Helper()
	opts = append([]lattice.Option{lattice.WithIDGenerator(sequentialIDs())}, opts...)
	b, err := lattice.New(opts...)
	require.NoError(t, err)
	return b
}

func ids(blocks []domain.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func TestBuilder_Scenarios(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()

	// 1. add headline to an empty page
	first, err := b.AddBlock(ctx, "p", domain.BlockHeadline)
	require.NoError(t, err)
	blocks, ok := b.LoadConfiguration(ctx, "p")
	require.True(t, ok)
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].Order)
	assert.True(t, blocks[0].Visible)

	// 2. add cta, delete the first block
	cta, err := b.AddBlock(ctx, "p", domain.BlockCTA)
	require.NoError(t, err)
	ok, err = b.DeleteBlock(ctx, "p", first)
	require.NoError(t, err)
	require.True(t, ok)
	blocks, _ = b.LoadConfiguration(ctx, "p")
	require.Len(t, blocks, 1)
	assert.Equal(t, cta, blocks[0].ID)
	assert.Equal(t, 0, blocks[0].Order)

	// 3. shallow merge
	_, err = b.UpdateBlock(ctx, "p", cta, domain.Patch{Content: map[string]any{"title": "Go", "buttonText": "Old"}})
	require.NoError(t, err)
	_, err = b.UpdateBlock(ctx, "p", cta, domain.Patch{Content: map[string]any{"buttonText": "Buy Now"}})
	require.NoError(t, err)
	blocks, _ = b.LoadConfiguration(ctx, "p")
	assert.Equal(t, "Go", blocks[0].Content["title"])
	assert.Equal(t, "Buy Now", blocks[0].Content["buttonText"])

	// 4. reorder three blocks
	b1, _ := b.AddBlock(ctx, "p", domain.BlockText)
	b2, _ := b.AddBlock(ctx, "p", domain.BlockFAQ)
	ok, err = b.Reorder(ctx, "p", 0, 2)
	require.NoError(t, err)
	require.True(t, ok)
	blocks, _ = b.LoadConfiguration(ctx, "p")
	assert.Equal(t, []string{b1, b2, cta}, ids(blocks))
	for i, blk := range blocks {
		assert.Equal(t, i, blk.Order)
	}

	// 5. toggle twice
	_, _ = b.ToggleVisibility(ctx, "p", b1)
	_, _ = b.ToggleVisibility(ctx, "p", b1)
	blocks, _ = b.LoadConfiguration(ctx, "p")
	assert.True(t, blocks[0].Visible)
}

func TestBuilder_MissingIDsReportFalse(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()

	for name, op := range map[string]func() (bool, error){
		"update":    func() (bool, error) { return b.UpdateBlock(ctx, "p", "nope", domain.Patch{Visible: new(bool)}) },
		"delete":    func() (bool, error) { return b.DeleteBlock(ctx, "p", "nope") },
		"toggle":    func() (bool, error) { return b.ToggleVisibility(ctx, "p", "nope") },
		"move":      func() (bool, error) { return b.Move(ctx, "p", "nope", lattice.DirectionUp) },
		"reorder":   func() (bool, error) { return b.Reorder(ctx, "p", 0, 3) },
		"preset":    func() (bool, error) { return b.ApplyPreset(ctx, "p", "nope", "Urgency") },
		"duplicate": func() (bool, error) { _, ok, err := b.Duplicate(ctx, "p", "nope"); return ok, err },
	} {
		ok, err := op()
		assert.NoError(t, err, name)
		assert.False(t, ok, name)
	}

	pages, err := b.Pages(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages, "failed mutations must not create pages")
}

func TestBuilder_MoveDuplicatePreset(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()

	h, _ := b.AddBlock(ctx, "p", domain.BlockHeadline)
	c, _ := b.AddBlock(ctx, "p", domain.BlockCTA)

	ok, err := b.Move(ctx, "p", c, lattice.DirectionUp)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = b.Move(ctx, "p", c, "sideways")
	assert.False(t, ok)

	dup, ok, err := b.Duplicate(ctx, "p", h)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.ApplyPreset(ctx, "p", c, "Urgency")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = b.ApplyPreset(ctx, "p", c, "Does not exist")
	assert.False(t, ok)

	blocks, _ := b.LoadConfiguration(ctx, "p")
	assert.Equal(t, []string{c, h, dup}, ids(blocks))
	assert.NotEqual(t, "Click here", blocks[0].Content["buttonText"])
}

func TestBuilder_ApplyTemplateAndSearch(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()

	found := b.SearchTemplates("sales", "")
	require.NotEmpty(t, found)

	first, err := b.ApplyTemplate(ctx, "p", found[0].ID)
	require.NoError(t, err)
	second, err := b.ApplyTemplate(ctx, "p", found[0].ID)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.NotEqual(t, first[i], second[i], "template blocks always get fresh ids")
	}

	_, err = b.ApplyTemplate(ctx, "p", "no-such-template")
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestBuilder_TemplateSources(t *testing.T) {
	src, err := memory.NewTemplates(domain.Template{
		ID: "extra", Name: "Extra template", Category: "custom",
		Blocks: []domain.Block{{ID: "x", Type: domain.BlockHeadline, Visible: true, Editable: true}},
	})
	require.NoError(t, err)

	b := newBuilder(t, lattice.WithTemplateSource(src))
	assert.Len(t, b.SearchTemplates("", "custom"), 1)
}

type failingSource struct{}

func (failingSource) ListTemplates(context.Context) ([]domain.Template, error) {
	return nil, errors.New("unreachable")
}

func TestBuilder_FailingTemplateSource(t *testing.T) {
	_, err := lattice.New(lattice.WithTemplateSource(failingSource{}))
	assert.ErrorContains(t, err, "unreachable")
}

func TestBuilder_SaveConfiguration(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()

	_, ok := b.LoadConfiguration(ctx, "missing")
	assert.False(t, ok)

	ok = b.SaveConfiguration(ctx, "p", []domain.Block{
		{ID: "a", Type: domain.BlockHeadline, Visible: true, Editable: true},
		{ID: "b", Type: domain.BlockCTA, Visible: true, Editable: true},
	})
	require.True(t, ok)

	blocks, ok := b.LoadConfiguration(ctx, "p")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids(blocks))
	assert.Equal(t, "Your headline here", blocks[0].Content["title"], "content is defaulted on save")

	ok = b.SaveConfiguration(ctx, "p", []domain.Block{{ID: "a", Type: "x"}, {ID: "a", Type: "x"}})
	assert.False(t, ok)
	blocks, _ = b.LoadConfiguration(ctx, "p")
	assert.Equal(t, []string{"a", "b"}, ids(blocks), "invalid blocks leave the page unchanged")
}

func TestBuilder_ExportImportRoundTrip(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	_, err := b.ApplyTemplate(ctx, "src", "sales-page")
	require.NoError(t, err)

	data, err := b.Export(ctx, "src")
	require.NoError(t, err)
	require.NoError(t, b.Import(ctx, "dst", data))

	src, _ := b.LoadConfiguration(ctx, "src")
	dst, _ := b.LoadConfiguration(ctx, "dst")
	assert.Equal(t, src, dst)

	err = b.Import(ctx, "dst", []byte(`{"not": "an array"}`))
	assert.ErrorIs(t, err, transfer.ErrNotArray)
	after, _ := b.LoadConfiguration(ctx, "dst")
	assert.Equal(t, src, after)
}

func TestBuilder_RenderAndHooks(t *testing.T) {
	var rendered []*domain.PageEvent
	var mutations []domain.MutationOp
	b := newBuilder(t, lattice.WithLifecycleHooks(domain.LifecycleHooks{
		OnPageRendered: func(_ context.Context, e *domain.PageEvent) { rendered = append(rendered, e) },
		OnBlockMutated: func(_ context.Context, e *domain.BlockEvent) { mutations = append(mutations, e.Op) },
	}))
	ctx := context.Background()

	h, _ := b.AddBlock(ctx, "p", domain.BlockHeadline)
	_, _ = b.UpdateBlock(ctx, "p", h, domain.Patch{Content: map[string]any{"title": "Hidden title"}})
	_, _ = b.ToggleVisibility(ctx, "p", h)
	_, _ = b.AddBlock(ctx, "p", "mystery")

	var view bytes.Buffer
	require.NoError(t, b.Render(ctx, &view, "p", render.ModeView))
	assert.NotContains(t, view.String(), "Hidden title")
	assert.Contains(t, view.String(), "mystery")

	var edit bytes.Buffer
	require.NoError(t, b.Render(ctx, &edit, "p", render.ModeEdit))
	assert.Contains(t, edit.String(), "Hidden title")

	require.Len(t, rendered, 2)
	assert.Equal(t, "edit", rendered[1].Mode)
	assert.Contains(t, mutations, domain.OpAdd)
	assert.Contains(t, mutations, domain.OpToggle)

	md, err := b.Markdown(ctx, "p", render.ModeEdit)
	require.NoError(t, err)
	assert.Contains(t, md, "Hidden title")
}

func TestBuilder_FormAndWorkspace(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	c, _ := b.AddBlock(ctx, "p", domain.BlockCTA)

	form, err := b.Form(ctx, "p", c)
	require.NoError(t, err)
	assert.Equal(t, c, form.BlockID)

	_, err = b.Form(ctx, "p", "nope")
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)
	_, err = b.Form(ctx, "missing", c)
	assert.ErrorIs(t, err, domain.ErrPageNotFound)

	view, err := b.Workspace(ctx, "p", c)
	require.NoError(t, err)
	require.NotNil(t, view.Properties)
	assert.Len(t, view.Tree, 1)

	view, err = b.Workspace(ctx, "p", "stale")
	require.NoError(t, err)
	assert.Nil(t, view.Properties)
}

func TestBuilder_SetTheme(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()

	require.NoError(t, b.SetTheme(ctx, "p", domain.Theme{PrimaryColor: "#ff0000"}))
	page, err := b.Page(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", page.Theme.PrimaryColor)
	assert.Equal(t, domain.DefaultTheme().FontFamily, page.Theme.FontFamily)
}

func TestBuilder_DefaultTheme(t *testing.T) {
	b := newBuilder(t, lattice.WithDefaultTheme(domain.Theme{BorderRadius: "none"}))
	ctx := context.Background()

	_, err := b.AddBlock(ctx, "p", domain.BlockText)
	require.NoError(t, err)
	page, err := b.Page(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "none", page.Theme.BorderRadius)
	assert.Equal(t, domain.DefaultTheme().PrimaryColor, page.Theme.PrimaryColor)
}

func TestBuilder_Checkout(t *testing.T) {
	b := newBuilder(t, lattice.WithCheckoutURL("https://pay.example.com"))
	ctx := context.Background()
	c, _ := b.AddBlock(ctx, "p", domain.BlockCTA)
	h, _ := b.AddBlock(ctx, "p", domain.BlockHeadline)

	var got string
	err := b.Checkout(ctx, "p", c, "alice", func(_ context.Context, url string) error {
		got = url
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com", got, "falls back to the configured checkout url")

	_, _ = b.UpdateBlock(ctx, "p", c, domain.Patch{Content: map[string]any{"buttonUrl": "https://shop.example.com/buy"}})
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Checkout(ctx, "p", c, "alice", func(_ context.Context, url string) error {
			got = url
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	err = b.Checkout(ctx, "p", c, "alice", func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, checkout.ErrInFlight)
	close(release)

	assert.Eventually(t, func() bool {
		return b.Checkout(ctx, "p", c, "alice", func(context.Context, string) error { return nil }) == nil
	}, time.Second, 10*time.Millisecond)
	assert.True(t, strings.HasSuffix(got, "/buy"))

	err = b.Checkout(ctx, "p", h, "alice", func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)
}

func TestBuilder_AddBlockRejectsEmptyType(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	h, err := b.AddBlock(ctx, "p", domain.BlockHeadline)
	require.NoError(t, err)

	id, err := b.AddBlock(ctx, "p", "")
	assert.ErrorIs(t, err, domain.ErrInvalidBlock)
	assert.Empty(t, id)

	ids, err := b.ApplyTemplate(ctx, "p", "sales-page")
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
	ok, err := b.DeleteBlock(ctx, "p", h)
	require.NoError(t, err, "the page stays loadable")
	assert.True(t, ok)
}

func TestBuilder_SharedStoreWithRestartedCounter(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := newBuilder(t, lattice.WithStore(store))
	a, err := first.AddBlock(ctx, "p", domain.BlockText)
	require.NoError(t, err)

	second := newBuilder(t, lattice.WithStore(store))
	c, err := second.AddBlock(ctx, "p", domain.BlockText)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = second.AddBlock(ctx, "p", domain.BlockCTA)
	require.NoError(t, err)
	blocks, ok := first.LoadConfiguration(ctx, "p")
	require.True(t, ok)
	assert.Len(t, blocks, 3)
}

func TestBuilder_WatchReportsCommittedDiffs(t *testing.T) {
	b, err := lattice.New()
	require.NoError(t, err)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		diffs []*domain.ListDiff
	)
	cancel := b.Watch(func(_ context.Context, pageID string, diff *domain.ListDiff) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "p", pageID)
		diffs = append(diffs, diff)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.AddBlock(ctx, "p", domain.BlockText)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	require.Len(t, diffs, 20)
	seen := map[string]bool{}
	for _, d := range diffs {
		require.Len(t, d.Added, 1, "each diff carries exactly its own mutation")
		assert.False(t, seen[d.Added[0].ID])
		seen[d.Added[0].ID] = true
	}
	mu.Unlock()

	ok, err := b.UpdateBlock(ctx, "p", "missing", domain.Patch{})
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, b.SetTheme(ctx, "p", domain.Theme{PrimaryColor: "#000000"}))

	cancel()
	_, _ = b.AddBlock(ctx, "p", domain.BlockText)
	mu.Lock()
	assert.Len(t, diffs, 20, "no diff for no-ops, theme changes or after cancel")
	mu.Unlock()
}

func TestBuilder_KeyboardReorder(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	h, _ := b.AddBlock(ctx, "p", domain.BlockHeadline)
	x, _ := b.AddBlock(ctx, "p", domain.BlockText)
	c, _ := b.AddBlock(ctx, "p", domain.BlockCTA)

	ok, msg, err := b.KeyboardReorder(ctx, "p", c, []dragdrop.Key{dragdrop.KeySpace, dragdrop.KeyUp, dragdrop.KeyUp, dragdrop.KeySpace})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Block moved from position 3 to position 1.", msg)
	blocks, _ := b.LoadConfiguration(ctx, "p")
	assert.Equal(t, []string{c, h, x}, ids(blocks))

	ok, msg, err = b.KeyboardReorder(ctx, "p", h, []dragdrop.Key{dragdrop.KeySpace, dragdrop.KeyEnd})
	require.NoError(t, err)
	assert.False(t, ok, "a gesture without a drop changes nothing")
	assert.Contains(t, msg, "cancelled")
	blocks, _ = b.LoadConfiguration(ctx, "p")
	assert.Equal(t, []string{c, h, x}, ids(blocks))

	ok, _, err = b.KeyboardReorder(ctx, "p", "missing", []dragdrop.Key{dragdrop.KeySpace})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuilder_CheckoutPerVisitor(t *testing.T) {
	b := newBuilder(t,
		lattice.WithCheckoutURL("https://pay.example.com/x"),
		lattice.WithCheckoutCooldown(5*time.Second),
	)
	ctx := context.Background()
	c, _ := b.AddBlock(ctx, "p", domain.BlockCTA)
	noop := func(context.Context, string) error { return nil }

	require.NoError(t, b.Checkout(ctx, "p", c, "alice", noop))
	require.NoError(t, b.Checkout(ctx, "p", c, "bob", noop), "one buyer does not lock out another")
	assert.ErrorIs(t, b.Checkout(ctx, "p", c, "alice", noop), checkout.ErrInFlight)
}

func TestBuilder_CheckoutWithoutURL(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	c, _ := b.AddBlock(ctx, "p", domain.BlockCTA)

	err := b.Checkout(ctx, "p", c, "alice", func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, checkout.ErrNoURL)
}

func TestBuilder_DeletePage(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	_, _ = b.AddBlock(ctx, "p", domain.BlockText)

	require.NoError(t, b.DeletePage(ctx, "p"))
	_, err := b.Page(ctx, "p")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}
