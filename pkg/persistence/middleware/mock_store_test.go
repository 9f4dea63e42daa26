package middleware_test

import (
	"context"
	"errors"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

var errFlaky = errors.New("connection reset")

// MockStore is a simple map-based store for testing middleware.
// The first Failures calls of every method return errFlaky.
type MockStore struct {
	data     map[string]*domain.Page
	Failures int
	Calls    int
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Page),
	}
}

func (s *MockStore) fail() error {
	s.Calls++
	if s.Failures > 0 {
		s.Failures--
		return errFlaky
	}
	return nil
}

func (s *MockStore) Save(ctx context.Context, page *domain.Page) error {
	if err := s.fail(); err != nil {
		return err
	}
	s.data[page.ID] = page.Snapshot()
	return nil
}

func (s *MockStore) Load(ctx context.Context, pageID string) (*domain.Page, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	page, ok := s.data[pageID]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return page.Snapshot(), nil
}

func (s *MockStore) Delete(ctx context.Context, pageID string) error {
	if err := s.fail(); err != nil {
		return err
	}
	delete(s.data, pageID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.PageStore = (*MockStore)(nil)
