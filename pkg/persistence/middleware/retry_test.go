package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryMiddleware_RecoversFromTransientFailures(t *testing.T) {
	underlying := NewMockStore()
	underlying.Failures = 2
	store := middleware.NewRetryMiddleware(middleware.RetryConfig{Attempts: 3, Backoff: time.Millisecond})(underlying)

	require.NoError(t, store.Save(context.Background(), domain.NewPage("home")))
	assert.Equal(t, 3, underlying.Calls)
}

func TestRetryMiddleware_GivesUp(t *testing.T) {
	underlying := NewMockStore()
	underlying.Failures = 5
	store := middleware.NewRetryMiddleware(middleware.RetryConfig{Attempts: 2, Backoff: time.Millisecond})(underlying)

	_, err := store.List(context.Background())
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 2, underlying.Calls)
}

func TestRetryMiddleware_NotFoundIsNotRetried(t *testing.T) {
	underlying := NewMockStore()
	store := middleware.NewRetryMiddleware(middleware.RetryConfig{Attempts: 5, Backoff: time.Millisecond})(underlying)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	assert.Equal(t, 1, underlying.Calls)
}

func TestRetryMiddleware_StopsOnCancel(t *testing.T) {
	underlying := NewMockStore()
	underlying.Failures = 10
	store := middleware.NewRetryMiddleware(middleware.RetryConfig{Attempts: 10, Backoff: time.Hour})(underlying)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := store.Delete(ctx, "home")
	assert.ErrorIs(t, err, errFlaky)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, underlying.Calls)
}

func TestChain_OrderAndRoundtrip(t *testing.T) {
	underlying := NewMockStore()
	underlying.Failures = 1
	store := middleware.Chain(underlying,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
		middleware.NewRetryMiddleware(middleware.RetryConfig{Attempts: 2, Backoff: time.Millisecond}),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, secretPage("chained")))
	loaded, err := store.Load(ctx, "chained")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loaded.Blocks[0].Content["title"])
}
