package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// RetryConfig controls NewRetryMiddleware.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first one. Values below 1 mean 1.
	Attempts int
	// Backoff is the wait before the second attempt; it doubles after every failure.
	Backoff time.Duration
	// MaxBackoff caps the wait between attempts. Zero means no cap.
	MaxBackoff time.Duration
	Logger     *slog.Logger
}

type retryMiddleware struct {
	next   ports.PageStore
	config RetryConfig
}

// NewRetryMiddleware retries failed store calls with exponential backoff.
// Not-found results and context cancellation are returned immediately.
func NewRetryMiddleware(config RetryConfig) Middleware {
	if config.Attempts < 1 {
		config.Attempts = 1
	}
	if config.Logger == nil {
		config.Logger = logging.NewNop()
	}
	return func(next ports.PageStore) ports.PageStore {
		return &retryMiddleware{next: next, config: config}
	}
}

func (m *retryMiddleware) do(ctx context.Context, op string, fn func() error) error {
	wait := m.config.Backoff
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt >= m.config.Attempts {
			return err
		}

		m.config.Logger.Warn("store call failed, retrying",
			"op", op, "attempt", attempt, "err", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}

		wait *= 2
		if m.config.MaxBackoff > 0 && wait > m.config.MaxBackoff {
			wait = m.config.MaxBackoff
		}
	}
}

func retryable(err error) bool {
	return !errors.Is(err, domain.ErrPageNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func (m *retryMiddleware) Save(ctx context.Context, page *domain.Page) error {
	return m.do(ctx, "save", func() error {
		return m.next.Save(ctx, page)
	})
}

func (m *retryMiddleware) Load(ctx context.Context, pageID string) (*domain.Page, error) {
	var page *domain.Page
	err := m.do(ctx, "load", func() error {
		var err error
		page, err = m.next.Load(ctx, pageID)
		return err
	})
	return page, err
}

func (m *retryMiddleware) Delete(ctx context.Context, pageID string) error {
	return m.do(ctx, "delete", func() error {
		return m.next.Delete(ctx, pageID)
	})
}

func (m *retryMiddleware) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := m.do(ctx, "list", func() error {
		var err error
		ids, err = m.next.List(ctx)
		return err
	})
	return ids, err
}
