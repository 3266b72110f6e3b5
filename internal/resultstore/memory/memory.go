package memory

import (
	"context"
	"sync"

	"simscan/internal/domain"
	"simscan/internal/resultstore"
)

// Storage is a simple in-memory pair store kept in descending score order.
type Storage struct {
	mu    sync.RWMutex
	run   *domain.Run
	pairs []domain.Pair
}

var _ resultstore.Storage = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(_ context.Context, run domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = &run
	s.pairs = nil
	return nil
}

func (s *Storage) Save(_ context.Context, pairs []domain.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return resultstore.ErrNotInitialized
	}
	s.pairs = append(s.pairs, pairs...)
	resultstore.SortDesc(s.pairs)
	return nil
}

func (s *Storage) Top(_ context.Context, k int) ([]domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.run == nil {
		return nil, resultstore.ErrNotInitialized
	}
	out := resultstore.Limit(s.pairs, k)
	return append([]domain.Pair(nil), out...), nil
}

func (s *Storage) ForGroup(_ context.Context, name string, k int) ([]domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.run == nil {
		return nil, resultstore.ErrNotInitialized
	}
	var out []domain.Pair
	for _, p := range s.pairs {
		if p.Involves(name) {
			out = append(out, p)
			if k > 0 && len(out) == k {
				break
			}
		}
	}
	return out, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = nil
	return nil
}

func (s *Storage) Close() error { return nil }
