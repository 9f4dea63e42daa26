package lattice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/blocklist"
	"github.com/aretw0/lattice/pkg/catalog"
	"github.com/aretw0/lattice/pkg/checkout"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dragdrop"
	"github.com/aretw0/lattice/pkg/editor"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/aretw0/lattice/pkg/session"
	"github.com/aretw0/lattice/pkg/transfer"
	"github.com/aretw0/lattice/pkg/workspace"
)

// Move directions accepted by Builder.Move.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Builder is the high-level entry point for the Lattice library.
// It ties the registry, the template catalog and the page store together and is the API
// used by the HTTP, MCP and CLI adapters.
type Builder struct {
	registry *registry.Registry
	catalog  *catalog.Catalog
	sessions *session.Manager

	store   ports.PageStore
	locker  ports.DistributedLocker
	sources []ports.TemplateSource

	checkoutURL      string
	checkoutCooldown time.Duration
	checkoutMu       sync.Mutex
	checkouts        map[string]*checkout.Registry

	watchMu     sync.RWMutex
	watchers    map[uint64]session.ChangeFunc
	nextWatcher uint64

	theme  *domain.Theme
	idGen  blocklist.IDGenerator
	now    func() time.Time
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithStore sets the page store. The default is an in-memory store.
func WithStore(store ports.PageStore) Option {
	return func(b *Builder) {
		b.store = store
	}
}

// WithLocker enables distributed page locks, for replicas sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Builder) {
		b.locker = locker
	}
}

// WithRegistry replaces the default block type registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(b *Builder) {
		b.registry = reg
	}
}

// WithCatalog replaces the built-in template catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(b *Builder) {
		b.catalog = c
	}
}

// WithTemplateSource adds templates from an external source (e.g. a Loam repository).
func WithTemplateSource(sources ...ports.TemplateSource) Option {
	return func(b *Builder) {
		b.sources = append(b.sources, sources...)
	}
}

// WithCheckoutURL sets the checkout target for CTA blocks without a buttonUrl.
func WithCheckoutURL(url string) Option {
	return func(b *Builder) {
		b.checkoutURL = url
	}
}

// WithCheckoutCooldown keeps a CTA disabled for d after its navigation resolved.
func WithCheckoutCooldown(d time.Duration) Option {
	return func(b *Builder) {
		b.checkoutCooldown = d
	}
}

// WithDefaultTheme sets the theme of new pages.
func WithDefaultTheme(theme domain.Theme) Option {
	return func(b *Builder) {
		b.theme = &theme
	}
}

// WithIDGenerator overrides how block ids are created.
func WithIDGenerator(gen blocklist.IDGenerator) Option {
	return func(b *Builder) {
		b.idGen = gen
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New initializes a Builder. Templates from every configured source are loaded into the
// catalog; a failing source is an error.
func New(opts ...Option) (*Builder, error) {
	b := &Builder{
		checkouts: make(map[string]*checkout.Registry),
		watchers:  make(map[uint64]session.ChangeFunc),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.registry == nil {
		b.registry = registry.Default()
	}
	if b.store == nil {
		b.store = memory.NewStore()
	}
	if b.catalog == nil {
		c, err := catalog.Builtin()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in templates: %w", err)
		}
		b.catalog = c
	}
	if b.idGen == nil {
		b.idGen = blocklist.NewIDGenerator(b.now)
	}

	sessionOpts := []session.Option{
		session.WithLogger(b.logger),
		session.WithHooks(b.hooks),
		session.WithClock(b.now),
		session.WithChangeFunc(b.publish),
		session.WithListOptions(
			blocklist.WithSchemas(b.registry.Schema),
			blocklist.WithIDGenerator(b.idGen),
			blocklist.WithHooks(b.hooks),
			blocklist.WithClock(b.now),
		),
	}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	if b.theme != nil {
		sessionOpts = append(sessionOpts, session.WithDefaultTheme(*b.theme))
	}
	b.sessions = session.NewManager(b.store, sessionOpts...)

	if err := b.RefreshTemplates(context.Background()); err != nil {
		return nil, err
	}
	return b, nil
}

// RefreshTemplates reloads templates from the configured sources into the catalog.
func (b *Builder) RefreshTemplates(ctx context.Context) error {
	for _, src := range b.sources {
		templates, err := src.ListTemplates(ctx)
		if err != nil {
			return fmt.Errorf("failed to load templates: %w", err)
		}
		b.catalog.Add(templates...)
		b.logger.Debug("templates loaded", "count", len(templates))
	}
	return nil
}

// Watch registers fn to receive the block diff of every saved page mutation.
// Diffs of one page arrive in commit order. fn must not block. The returned func
// unregisters it.
func (b *Builder) Watch(fn session.ChangeFunc) (cancel func()) {
	b.watchMu.Lock()
	id := b.nextWatcher
	b.nextWatcher++
	b.watchers[id] = fn
	b.watchMu.Unlock()

	return func() {
		b.watchMu.Lock()
		delete(b.watchers, id)
		b.watchMu.Unlock()
	}
}

func (b *Builder) publish(ctx context.Context, pageID string, diff *domain.ListDiff) {
	b.watchMu.RLock()
	defer b.watchMu.RUnlock()
	for _, fn := range b.watchers {
		fn(ctx, pageID, diff)
	}
}

// Registry returns the block type registry.
func (b *Builder) Registry() *registry.Registry { return b.registry }

// Catalog returns the template catalog.
func (b *Builder) Catalog() *catalog.Catalog { return b.catalog }

// Sessions returns the page session manager.
func (b *Builder) Sessions() *session.Manager { return b.sessions }

// Logger returns the builder's logger.
func (b *Builder) Logger() *slog.Logger { return b.logger }

// Types lists the palette.
func (b *Builder) Types() []registry.PaletteItem {
	return b.registry.Palette()
}

// SearchTemplates filters the catalog by free text and category.
func (b *Builder) SearchTemplates(query, category string) []domain.Template {
	return b.catalog.Search(query, category)
}

// Pages lists stored page ids.
func (b *Builder) Pages(ctx context.Context) ([]string, error) {
	return b.sessions.List(ctx)
}

// Page loads a stored page. Missing pages return domain.ErrPageNotFound.
func (b *Builder) Page(ctx context.Context, pageID string) (*domain.Page, error) {
	return b.sessions.Load(ctx, pageID)
}

// DeletePage removes a page and its checkout state.
func (b *Builder) DeletePage(ctx context.Context, pageID string) error {
	b.checkoutMu.Lock()
	delete(b.checkouts, pageID)
	b.checkoutMu.Unlock()
	return b.sessions.Delete(ctx, pageID)
}

// LoadConfiguration returns the stored blocks of a page.
// The boolean is false when the page does not exist or cannot be read.
func (b *Builder) LoadConfiguration(ctx context.Context, pageID string) ([]domain.Block, bool) {
	page, err := b.sessions.Load(ctx, pageID)
	if err != nil {
		if !errors.Is(err, domain.ErrPageNotFound) {
			b.logger.Error("failed to load configuration", "page_id", pageID, "err", err)
		}
		return nil, false
	}
	return page.Blocks, true
}

// SaveConfiguration replaces the blocks of a page. It reports false when the blocks are
// invalid or the store fails.
func (b *Builder) SaveConfiguration(ctx context.Context, pageID string, blocks []domain.Block) bool {
	var invalid error
	_, ok, err := b.sessions.Mutate(ctx, pageID, func(_ *domain.Page, l *blocklist.List) bool {
		invalid = l.Replace(blocks)
		return invalid == nil
	})
	if err == nil {
		err = invalid
	}
	if err != nil {
		b.logger.Error("failed to save configuration", "page_id", pageID, "err", err)
		return false
	}
	return ok
}

func (b *Builder) mutate(ctx context.Context, pageID string, fn func(*blocklist.List) bool) (bool, error) {
	_, ok, err := b.sessions.Mutate(ctx, pageID, func(_ *domain.Page, l *blocklist.List) bool {
		return fn(l)
	})
	return ok, err
}

// AddBlock appends a block of the given type with its default content.
// An empty type is rejected with domain.ErrInvalidBlock and the page is not touched.
func (b *Builder) AddBlock(ctx context.Context, pageID, blockType string) (string, error) {
	if blockType == "" {
		return "", fmt.Errorf("%w: block type is required", domain.ErrInvalidBlock)
	}
	var id string
	_, err := b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		id = l.Add(blockType)
		return id != ""
	})
	return id, err
}

// UpdateBlock shallow-merges p into the block.
func (b *Builder) UpdateBlock(ctx context.Context, pageID, blockID string, p domain.Patch) (bool, error) {
	return b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		return l.Update(blockID, p)
	})
}

// DeleteBlock removes an editable block.
func (b *Builder) DeleteBlock(ctx context.Context, pageID, blockID string) (bool, error) {
	return b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		return l.Delete(blockID)
	})
}

// ToggleVisibility flips the visible flag of a block.
func (b *Builder) ToggleVisibility(ctx context.Context, pageID, blockID string) (bool, error) {
	return b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		return l.ToggleVisibility(blockID)
	})
}

// Duplicate appends a copy of a block and returns the new id.
func (b *Builder) Duplicate(ctx context.Context, pageID, blockID string) (string, bool, error) {
	var id string
	ok, err := b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		var ok bool
		id, ok = l.Duplicate(blockID)
		return ok
	})
	return id, ok, err
}

// Reorder moves the block at from to position to.
func (b *Builder) Reorder(ctx context.Context, pageID string, from, to int) (bool, error) {
	return b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		return l.Reorder(from, to)
	})
}

// Move shifts a block one position up or down.
func (b *Builder) Move(ctx context.Context, pageID, blockID, direction string) (bool, error) {
	return b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		switch direction {
		case DirectionUp:
			return l.MoveUp(blockID)
		case DirectionDown:
			return l.MoveDown(blockID)
		}
		return false
	})
}

// KeyboardReorder replays a keyboard reordering gesture on a block, starting with the block
// focused (e.g. space, up, up, space). The page is saved only when the gesture ends with a
// drop at a new position. It returns the last live-region announcement.
func (b *Builder) KeyboardReorder(ctx context.Context, pageID, blockID string, keys []dragdrop.Key) (bool, string, error) {
	var announcement string
	ok, err := b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		start := l.Index(blockID)
		if start < 0 {
			return false
		}
		c := dragdrop.New(l)
		for _, k := range keys {
			c.Key(k, l.Index(blockID))
		}
		c.Cancel()
		announcement = c.Announcement()
		return l.Index(blockID) != start
	})
	return ok, announcement, err
}

// ApplyPreset applies a named quick template of the block's editor.
func (b *Builder) ApplyPreset(ctx context.Context, pageID, blockID, name string) (bool, error) {
	return b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		blk, ok := l.Get(blockID)
		if !ok {
			return false
		}
		p, ok := editor.ApplyPreset(b.registry.Editor(blk.Type), name)
		if !ok {
			return false
		}
		return l.Update(blockID, p)
	})
}

// ApplyTemplate appends the blocks of a catalog template with fresh ids.
func (b *Builder) ApplyTemplate(ctx context.Context, pageID, templateID string) ([]string, error) {
	tmpl, err := b.catalog.Get(templateID)
	if err != nil {
		return nil, err
	}
	var ids []string
	_, err = b.mutate(ctx, pageID, func(l *blocklist.List) bool {
		ids = l.AddFromTemplate(tmpl)
		return len(ids) > 0
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetTheme replaces the theme of a page. Missing tokens fall back to the defaults.
func (b *Builder) SetTheme(ctx context.Context, pageID string, theme domain.Theme) error {
	_, _, err := b.sessions.Mutate(ctx, pageID, func(p *domain.Page, _ *blocklist.List) bool {
		p.Theme = theme.WithDefaults()
		return true
	})
	return err
}

// Form returns the property form of a block.
func (b *Builder) Form(ctx context.Context, pageID, blockID string) (editor.Form, error) {
	page, err := b.sessions.Load(ctx, pageID)
	if err != nil {
		return editor.Form{}, err
	}
	for _, blk := range page.Blocks {
		if blk.ID == blockID {
			return b.registry.Form(blk), nil
		}
	}
	return editor.Form{}, fmt.Errorf("%w: %q", domain.ErrBlockNotFound, blockID)
}

// Workspace builds the editor view of a page. A missing page yields an empty workspace.
func (b *Builder) Workspace(ctx context.Context, pageID, selected string, opts ...workspace.Option) (workspace.View, error) {
	page, err := b.sessions.LoadOrCreate(ctx, pageID)
	if err != nil {
		return workspace.View{}, err
	}
	list := blocklist.New(blocklist.WithSchemas(b.registry.Schema))
	if err := list.Replace(page.Blocks); err != nil {
		return workspace.View{}, err
	}

	base := []workspace.Option{
		workspace.WithTemplates(b.catalog.All()),
		workspace.WithCanvas(render.NewContext(page.Theme, render.ModeEdit)),
	}
	return workspace.New(list, b.registry, append(base, opts...)...).Build(selected), nil
}

// Render writes the HTML document of a page. configure may adjust the render context,
// e.g. to point CTAs at a checkout endpoint. A missing page renders empty.
func (b *Builder) Render(ctx context.Context, w io.Writer, pageID string, mode render.Mode, configure ...func(*render.Context)) error {
	start := b.now()
	page, err := b.sessions.LoadOrCreate(ctx, pageID)
	if err == nil {
		rc := render.NewContext(page.Theme, mode)
		for _, fn := range configure {
			fn(rc)
		}
		err = render.Page(w, *page, b.registry, rc)
	}
	if b.hooks.OnPageRendered != nil {
		b.hooks.OnPageRendered(ctx, &domain.PageEvent{
			Timestamp: start,
			PageID:    pageID,
			Mode:      string(mode),
			Duration:  b.now().Sub(start),
			Err:       err,
		})
	}
	return err
}

// Markdown renders a plain-text preview of a page.
func (b *Builder) Markdown(ctx context.Context, pageID string, mode render.Mode) (string, error) {
	page, err := b.sessions.LoadOrCreate(ctx, pageID)
	if err != nil {
		return "", err
	}
	return render.Markdown(*page, b.registry, render.NewContext(page.Theme, mode)), nil
}

// Export returns the blocks of a page as pretty JSON.
func (b *Builder) Export(ctx context.Context, pageID string) ([]byte, error) {
	page, err := b.sessions.LoadOrCreate(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return transfer.Export(page.Blocks)
}

// Import replaces the blocks of a page with the JSON document data.
// The page is left untouched when data is invalid.
func (b *Builder) Import(ctx context.Context, pageID string, data []byte) error {
	blocks, err := transfer.Import(data)
	if err != nil {
		return err
	}
	var invalid error
	_, _, err = b.sessions.Mutate(ctx, pageID, func(_ *domain.Page, l *blocklist.List) bool {
		invalid = l.Replace(blocks)
		return invalid == nil
	})
	if err != nil {
		return err
	}
	return invalid
}

// Checkout resolves the target of a CTA block and hands it to navigate. The guard is scoped
// to one visitor of one button: a second click by the same visitor while the first is
// unresolved (or cooling down) fails with checkout.ErrInFlight, other visitors are unaffected.
func (b *Builder) Checkout(ctx context.Context, pageID, blockID, visitor string, navigate checkout.Navigator) error {
	page, err := b.sessions.Load(ctx, pageID)
	if err != nil {
		return err
	}

	var (
		target string
		found  bool
	)
	for _, blk := range page.Blocks {
		url, isButton := blk.Content["buttonUrl"].(string)
		if isButton && blk.ID == blockID && blk.Visible {
			found = true
			target = url
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", domain.ErrBlockNotFound, blockID)
	}
	if target == "" {
		target = b.checkoutURL
	}

	return b.checkoutButtons(pageID).Click(ctx, blockID+"#"+visitor, target, navigate)
}

func (b *Builder) checkoutButtons(pageID string) *checkout.Registry {
	b.checkoutMu.Lock()
	defer b.checkoutMu.Unlock()
	r, ok := b.checkouts[pageID]
	if !ok {
		var opts []checkout.Option
		if b.checkoutCooldown > 0 {
			opts = append(opts, checkout.WithCooldown(b.checkoutCooldown))
		}
		opts = append(opts, checkout.WithClock(b.now))
		r = checkout.NewRegistry(opts...)
		b.checkouts[pageID] = r
	}
	return r
}
