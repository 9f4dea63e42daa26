package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/lattice/pkg/blocklist"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, page *domain.Page) error { return nil }
func (nopStore) Load(ctx context.Context, pageID string) (*domain.Page, error) {
	return nil, domain.ErrPageNotFound
}
func (nopStore) Delete(ctx context.Context, pageID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)      { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("page-%d", i)
		_ = mgr.Save(ctx, domain.NewPage(id))
		_, _, _ = mgr.Mutate(ctx, id, func(*domain.Page, *blocklist.List) bool { return false })
		_ = mgr.Delete(ctx, id)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
