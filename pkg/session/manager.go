package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/blocklist"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed page lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates page access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.PageStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	listOps  []blocklist.Option
	theme    domain.Theme
	now      func() time.Time
	onChange ChangeFunc
}

// ChangeFunc observes the block diff of a saved mutation. It runs while the page is locked,
// so calls for one page arrive in commit order; it must not block.
type ChangeFunc func(ctx context.Context, pageID string, diff *domain.ListDiff)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks registers OnPageSaved observers.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithChangeFunc reports the block diff of every mutation that changed the blocks of a page.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// WithListOptions configures the block lists handed to Mutate (schemas, id generator, hooks).
func WithListOptions(opts ...blocklist.Option) Option {
	return func(m *Manager) {
		m.listOps = append(m.listOps, opts...)
	}
}

// WithDefaultTheme sets the theme of pages created on first access.
// Empty tokens fall back to domain.DefaultTheme.
func WithDefaultTheme(theme domain.Theme) Option {
	return func(m *Manager) {
		m.theme = theme.WithDefaults()
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new page Manager over the given store.
func NewManager(store ports.PageStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		theme:   domain.DefaultTheme(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, then call release(pageID) after unlocking.
func (m *Manager) acquire(pageID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[pageID]
	if !exists {
		entry = &lockEntry{}
		m.locks[pageID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[pageID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, pageID)
	}
}

// Load retrieves an existing page from the store.
func (m *Manager) Load(ctx context.Context, pageID string) (*domain.Page, error) {
	var page *domain.Page
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		page, err = m.store.Load(ctx, pageID)
		return err
	})
	return page, err
}

// LoadOrCreate loads a page, or returns a new empty one (not yet persisted) if none exists.
func (m *Manager) LoadOrCreate(ctx context.Context, pageID string) (*domain.Page, error) {
	var page *domain.Page
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		page, err = m.loadOrNew(ctx, pageID)
		return err
	})
	return page, err
}

func (m *Manager) loadOrNew(ctx context.Context, pageID string) (*domain.Page, error) {
	page, err := m.store.Load(ctx, pageID)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, domain.ErrPageNotFound) {
		return nil, fmt.Errorf("failed to check page existence: %w", err)
	}
	page = domain.NewPage(pageID)
	page.Theme = m.theme
	return page, nil
}

// Save persists the page, stamping UpdatedAt.
func (m *Manager) Save(ctx context.Context, page *domain.Page) error {
	return m.WithLock(ctx, page.ID, func(ctx context.Context) error {
		return m.save(ctx, page)
	})
}

func (m *Manager) save(ctx context.Context, page *domain.Page) error {
	start := m.now()
	page.UpdatedAt = start
	err := m.store.Save(ctx, page)
	if m.hooks.OnPageSaved != nil {
		m.hooks.OnPageSaved(ctx, &domain.PageEvent{
			Timestamp: start,
			PageID:    page.ID,
			Duration:  m.now().Sub(start),
			Err:       err,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to save page %q: %w", page.ID, err)
	}
	return nil
}

// Mutate runs fn against the page and its block list under the page lock.
// The page is created if missing. When fn returns true the blocks are written back and
// the page is saved; false leaves the store untouched.
func (m *Manager) Mutate(ctx context.Context, pageID string, fn func(*domain.Page, *blocklist.List) bool) (*domain.Page, bool, error) {
	var (
		page    *domain.Page
		changed bool
	)
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		page, err = m.loadOrNew(ctx, pageID)
		if err != nil {
			return err
		}

		list := blocklist.New(m.listOps...)
		if err := list.Replace(page.Blocks); err != nil {
			return fmt.Errorf("stored page %q is corrupt: %w", pageID, err)
		}

		before := list.Blocks()
		if changed = fn(page, list); !changed {
			return nil
		}
		page.Blocks = list.Blocks()
		if err := m.save(ctx, page); err != nil {
			return err
		}
		if m.onChange != nil {
			if diff := domain.Diff(before, page.Blocks); !diff.IsEmpty() {
				m.onChange(ctx, pageID, diff)
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return page, changed, nil
}

// Delete removes the page from the store.
func (m *Manager) Delete(ctx context.Context, pageID string) error {
	return m.WithLock(ctx, pageID, func(ctx context.Context) error {
		return m.store.Delete(ctx, pageID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying page store.
func (m *Manager) Store() ports.PageStore {
	return m.store
}

// WithLock executes a function while holding the lock for the page.
func (m *Manager) WithLock(ctx context.Context, pageID string, fn func(context.Context) error) error {
	entry := m.acquire(pageID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(pageID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, pageID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"page_id", pageID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
