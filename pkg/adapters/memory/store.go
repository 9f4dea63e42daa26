package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// Store implements ports.PageStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Page
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Page),
	}
}

// Save persists the page in memory.
func (s *Store) Save(ctx context.Context, page *domain.Page) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := page.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[page.ID] = copied
	return nil
}

// Load retrieves the page from memory.
func (s *Store) Load(ctx context.Context, pageID string) (*domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.data[pageID]
	if !ok {
		return nil, domain.ErrPageNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return page.Snapshot(), nil
}

// Delete removes the page.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, pageID)
	return nil
}

// List returns the stored page IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]string, 0, len(s.data))
	for id := range s.data {
		pages = append(pages, id)
	}
	sort.Strings(pages)
	return pages, nil
}
