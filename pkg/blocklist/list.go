package blocklist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

// SchemaFunc returns the declared schema of a block type.
// Unknown types yield the zero schema (no defaults).
type SchemaFunc func(blockType string) schema.BlockSchema

// List is an ordered, copy-on-write collection of blocks.
// Safe for concurrent use.
type List struct {
	mu     sync.RWMutex
	blocks []domain.Block

	newID   IDGenerator
	schemas SchemaFunc
	hooks   domain.LifecycleHooks
	now     func() time.Time
}

// Option configures a List.
type Option func(*List)

// WithIDGenerator overrides how block ids are created.
func WithIDGenerator(gen IDGenerator) Option {
	return func(l *List) {
		l.newID = gen
	}
}

// WithSchemas sets the per-type schemas used to default content and style.
func WithSchemas(fn SchemaFunc) Option {
	return func(l *List) {
		l.schemas = fn
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(l *List) {
		l.hooks = hooks
	}
}

// WithClock overrides the time source (ids and event timestamps).
func WithClock(now func() time.Time) Option {
	return func(l *List) {
		l.now = now
	}
}

// New creates an empty list.
func New(opts ...Option) *List {
	l := &List{
		blocks:  []domain.Block{},
		schemas: func(string) schema.BlockSchema { return schema.BlockSchema{} },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.newID == nil {
		l.newID = NewIDGenerator(l.now)
	}
	return l
}

// Len returns the number of blocks.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Blocks returns a deep copy of every block, in order.
func (l *List) Blocks() []domain.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.blocks)
}

// Visible returns the blocks included in view mode.
func (l *List) Visible() []domain.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Block, 0, len(l.blocks))
	for _, b := range l.blocks {
		if b.Visible {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Get returns a copy of the block with the given id.
func (l *List) Get(id string) (domain.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := indexOf(l.blocks, id)
	if i < 0 {
		return domain.Block{}, false
	}
	return l.blocks[i].Clone(), true
}

// Index returns the position of the block with the given id, or -1.
func (l *List) Index(id string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return indexOf(l.blocks, id)
}

// Add appends a new block of type blockType with defaulted content and style,
// and returns its id. An empty type adds nothing and returns "".
func (l *List) Add(blockType string) string {
	if blockType == "" {
		return ""
	}
	l.mu.Lock()
	s := l.schemas(blockType)
	b := domain.Block{
		ID:       l.freshID(l.blocks, blockType),
		Type:     blockType,
		Content:  s.FillContent(nil),
		Style:    s.FillStyle(nil),
		Visible:  true,
		Editable: true,
	}
	next := append(cloneAll(l.blocks), b)
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpAdd, b, len(next))
	return b.ID
}

// AddFromTemplate appends every block of t, in sequence, renumbered from the current length.
// Template blocks always receive fresh ids so a template can be applied more than once.
// Template blocks without a type are skipped.
func (l *List) AddFromTemplate(t domain.Template) []string {
	l.mu.Lock()
	next := cloneAll(l.blocks)
	ids := make([]string, 0, len(t.Blocks))
	for _, tb := range t.Blocks {
		if tb.Type == "" {
			continue
		}
		b := l.normalize(tb.Clone())
		b.ID = l.freshID(next, b.Type)
		next = append(next, b)
		ids = append(ids, b.ID)
	}
	if len(ids) == 0 {
		l.mu.Unlock()
		return nil
	}
	l.commit(next)
	length := len(next)
	l.mu.Unlock()

	l.emit(domain.OpTemplate, domain.Block{ID: t.ID}, length)
	return ids
}

// Update shallow-merges p into the block with the given id.
// Returns false if the id is unknown.
func (l *List) Update(id string, p domain.Patch) bool {
	l.mu.Lock()
	i := indexOf(l.blocks, id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	next := cloneAll(l.blocks)
	next[i] = p.Apply(next[i])
	updated := next[i]
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpUpdate, updated, len(next))
	return true
}

// Delete removes the block with the given id and closes the gap in Order.
// Returns false if the id is unknown or the block is not editable.
func (l *List) Delete(id string) bool {
	l.mu.Lock()
	i := indexOf(l.blocks, id)
	if i < 0 || !l.blocks[i].Editable {
		l.mu.Unlock()
		return false
	}
	removed := l.blocks[i]
	next := make([]domain.Block, 0, len(l.blocks)-1)
	next = append(next, cloneAll(l.blocks[:i])...)
	next = append(next, cloneAll(l.blocks[i+1:])...)
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpDelete, removed, len(next))
	return true
}

// Reorder moves the block at from to position to (remove then insert) and renumbers.
// Returns false if either index is out of range. from == to is a successful no-op.
func (l *List) Reorder(from, to int) bool {
	return l.reorder(func([]domain.Block) (int, int) { return from, to })
}

// MoveUp moves the block one position towards the top.
func (l *List) MoveUp(id string) bool {
	return l.shift(id, -1)
}

// MoveDown moves the block one position towards the bottom.
func (l *List) MoveDown(id string) bool {
	return l.shift(id, 1)
}

func (l *List) shift(id string, delta int) bool {
	return l.reorder(func(blocks []domain.Block) (int, int) {
		i := indexOf(blocks, id)
		if i < 0 {
			return -1, -1
		}
		return i, i + delta
	})
}

// reorder resolves the positions under the write lock, so that position lookups
// and the move are atomic.
func (l *List) reorder(positions func([]domain.Block) (int, int)) bool {
	l.mu.Lock()
	from, to := positions(l.blocks)
	n := len(l.blocks)
	if from < 0 || from >= n || to < 0 || to >= n {
		l.mu.Unlock()
		return false
	}
	if from == to {
		l.mu.Unlock()
		return true
	}
	next := move(cloneAll(l.blocks), from, to)
	moved := next[to]
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpReorder, moved, n)
	return true
}

// ToggleVisibility flips the visible flag of the block with the given id.
func (l *List) ToggleVisibility(id string) bool {
	l.mu.Lock()
	i := indexOf(l.blocks, id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	next := cloneAll(l.blocks)
	next[i].Visible = !next[i].Visible
	toggled := next[i]
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpToggle, toggled, len(next))
	return true
}

// Duplicate appends a copy of the block with a fresh id. The copy is always editable.
func (l *List) Duplicate(id string) (string, bool) {
	l.mu.Lock()
	i := indexOf(l.blocks, id)
	if i < 0 {
		l.mu.Unlock()
		return "", false
	}
	dup := l.blocks[i].Clone()
	dup.ID = l.freshID(l.blocks, dup.Type)
	dup.Editable = true
	next := append(cloneAll(l.blocks), dup)
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpDuplicate, dup, len(next))
	return dup.ID, true
}

// Replace swaps the whole list, as done on load and import.
// Blocks are defaulted and renumbered by slice position. If the input violates the
// invariants (empty id or type, duplicated id) the list is left unchanged.
func (l *List) Replace(blocks []domain.Block) error {
	seen := make(map[string]bool, len(blocks))
	for i, b := range blocks {
		if b.ID == "" {
			return fmt.Errorf("%w: block %d has no id", domain.ErrInvalidBlock, i)
		}
		if b.Type == "" {
			return fmt.Errorf("%w: block %q has no type", domain.ErrInvalidBlock, b.ID)
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: duplicated id %q", domain.ErrInvalidBlock, b.ID)
		}
		seen[b.ID] = true
	}

	l.mu.Lock()
	next := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		next[i] = l.normalize(b.Clone())
	}
	l.commit(next)
	l.mu.Unlock()

	l.emit(domain.OpReplace, domain.Block{}, len(next))
	return nil
}

// freshID draws an id from the generator that is not used in blocks. A taken or empty
// id gets a numeric suffix. Caller holds the lock.
func (l *List) freshID(blocks []domain.Block, blockType string) string {
	base := l.newID(blockType)
	if base == "" {
		base = blockType
	}
	id := base
	for n := 2; indexOf(blocks, id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// normalize fills absent content/style keys from the schema. Caller holds the lock.
func (l *List) normalize(b domain.Block) domain.Block {
	s := l.schemas(b.Type)
	b.Content = s.FillContent(b.Content)
	b.Style = s.FillStyle(b.Style)
	return b
}

// commit renumbers and swaps in next. Caller holds the write lock.
func (l *List) commit(next []domain.Block) {
	for i := range next {
		next[i].Order = i
	}
	l.blocks = next
}

func (l *List) emit(op domain.MutationOp, b domain.Block, length int) {
	if l.hooks.OnBlockMutated == nil {
		return
	}
	l.hooks.OnBlockMutated(context.Background(), &domain.BlockEvent{
		Timestamp: l.now(),
		Op:        op,
		BlockID:   b.ID,
		BlockType: b.Type,
		Length:    length,
	})
}

func indexOf(blocks []domain.Block, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// move implements array-move semantics on s, which it may modify.
func move(s []domain.Block, from, to int) []domain.Block {
	item := s[from]
	s = append(s[:from], s[from+1:]...)
	s = append(s[:to], append([]domain.Block{item}, s[to:]...)...)
	return s
}
