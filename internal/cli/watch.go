package cli

import (
	"context"
	"log/slog"
	"time"
)

// WatchTemplates reloads the catalog whenever a template document changes, until ctx is done.
// Bursts of events are coalesced over debounce.
func (a *App) WatchTemplates(ctx context.Context, debounce time.Duration, logger *slog.Logger) error {
	if a.Templates == nil {
		return nil
	}
	events, err := a.Templates.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		var timer <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-events:
				if !ok {
					return
				}
				logger.Debug("template changed", "id", id)
				timer = time.After(debounce)
			case <-timer:
				timer = nil
				if err := a.Builder.RefreshTemplates(ctx); err != nil {
					logger.Warn("template reload failed", "err", err)
					continue
				}
				logger.Info("templates reloaded")
			}
		}
	}()
	return nil
}
