package domain

import (
	"context"
	"time"
)

// MutationOp identifies a Block List Store operation.
type MutationOp string

const (
	OpAdd       MutationOp = "add"
	OpTemplate  MutationOp = "template"
	OpUpdate    MutationOp = "update"
	OpDelete    MutationOp = "delete"
	OpReorder   MutationOp = "reorder"
	OpToggle    MutationOp = "toggle"
	OpDuplicate MutationOp = "duplicate"
	OpReplace   MutationOp = "replace"
)

// BlockEvent describes a successful mutation of a block list.
type BlockEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Op        MutationOp `json:"op"`
	BlockID   string     `json:"block_id,omitempty"`
	BlockType string     `json:"block_type,omitempty"`
	Length    int        `json:"length"`
}

// PageEvent describes a persistence or rendering event for a page.
type PageEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	PageID    string        `json:"page_id"`
	Mode      string        `json:"mode,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for builder observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnBlockMutated func(context.Context, *BlockEvent)
	OnPageSaved    func(context.Context, *PageEvent)
	OnPageRendered func(context.Context, *PageEvent)
}

// Merge returns hooks that invoke both h and other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnBlockMutated: chain(h.OnBlockMutated, other.OnBlockMutated),
		OnPageSaved:    chain(h.OnPageSaved, other.OnPageSaved),
		OnPageRendered: chain(h.OnPageRendered, other.OnPageRendered),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
