package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level; failed saves are logged as errors.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockMutated: func(ctx context.Context, e *domain.BlockEvent) {
			logger.DebugContext(ctx, "block_mutated",
				"op", e.Op,
				"block_id", e.BlockID,
				"block_type", e.BlockType,
				"length", e.Length,
			)
		},
		OnPageSaved: func(ctx context.Context, e *domain.PageEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "page_save_failed", "page_id", e.PageID, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "page_saved", "page_id", e.PageID)
		},
		OnPageRendered: func(ctx context.Context, e *domain.PageEvent) {
			logger.DebugContext(ctx, "page_rendered",
				"page_id", e.PageID,
				"mode", e.Mode,
				"duration", e.Duration,
			)
		},
	}
}
