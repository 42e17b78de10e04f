package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/WOOWTECH/ha-finance/internal/storage"
)

// Store is a process-local Backend, used by tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	data   []byte
	writes int
}

func New() *Store {
	return &Store{}
}

// Seed returns a store that already holds data.
func Seed(data []byte) *Store {
	return &Store{data: slices.Clone(data)}
}

func (s *Store) Read(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, storage.ErrNoSnapshot
	}

	return slices.Clone(s.data), nil
}

func (s *Store) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = slices.Clone(data)
	s.writes++

	return nil
}

func (s *Store) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = nil

	return nil
}

// Writes reports how many times Write succeeded.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes
}
