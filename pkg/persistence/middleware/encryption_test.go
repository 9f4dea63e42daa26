package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secretPage(id string) *domain.Page {
	page := domain.NewPage(id)
	page.Blocks = []domain.Block{{
		ID:       "headline-1",
		Type:     domain.BlockHeadline,
		Content:  map[string]any{"title": "my-secret-sauce"},
		Style:    map[string]any{},
		Visible:  true,
		Editable: true,
	}}
	return page
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunPageStoreContract(t, mw(NewMockStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, secretPage("landing")))

	stored, err := underlying.Load(ctx, "landing")
	require.NoError(t, err)
	require.Len(t, stored.Blocks, 1)
	assert.Equal(t, middleware.EnvelopeBlockType, stored.Blocks[0].Type)
	assert.NotContains(t, stored.Blocks[0].Content["data"], "my-secret-sauce")

	loaded, err := secure.Load(ctx, "landing")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loaded.Blocks[0].Content["title"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	old := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, old.Save(ctx, secretPage("rotation")))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)
	loaded, err := rotated.Load(ctx, "rotation")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loaded.Blocks[0].Content["title"])

	withoutFallback := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlying)
	_, err = withoutFallback.Load(ctx, "rotation")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainPages(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, secretPage("plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptionMiddleware_PanicsOnShortKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

func TestParseKey(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef"
	key, err := middleware.ParseKey(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), key)

	key, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte(raw)))
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), key)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
