package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

// Store keeps history for the process lifetime only.
type Store struct {
	mu      sync.RWMutex
	records []*history.Record
}

var _ history.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, r *history.Record) error {
	cp := *r
	s.mu.Lock()
	s.records = append(s.records, &cp)
	s.mu.Unlock()
	return nil
}

func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*history.Record, len(s.records))
	for i, r := range s.records {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}
