package ports_test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// MockStore is a JSON-serializing implementation of PageStore for testing purposes.
type MockStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, page *domain.Page) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[page.ID] = raw
	return nil
}

func (m *MockStore) Load(ctx context.Context, pageID string) (*domain.Page, error) {
	m.mu.Lock()
	raw, ok := m.data[pageID]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	var page domain.Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (m *MockStore) Delete(ctx context.Context, pageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, pageID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestPageStore_Contract(t *testing.T) {
	ports.RunPageStoreContract(t, NewMockStore())
}
