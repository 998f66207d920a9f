// Package memory is the default results driver. Everything lives for the
// lifetime of the process.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
	"github.com/aussiebroadwan/acrelay/internal/relay/store"
)

type Store struct {
	mu      sync.RWMutex
	results map[string]domain.Result

	// now is swapped in tests.
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		results: make(map[string]domain.Result),
		now:     time.Now,
	}
}

func (s *Store) Results() store.Results         { return &resultsRepo{s: s} }
func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type resultsRepo struct {
	s *Store
}

func (r *resultsRepo) PutResult(_ context.Context, res domain.Result) error {
	res.Payload = bytes.Clone(res.Payload)
	res.UpdatedAt = r.s.now().UTC()

	r.s.mu.Lock()
	r.s.results[res.Token] = res
	r.s.mu.Unlock()
	return nil
}

func (r *resultsRepo) GetResult(_ context.Context, token string) (domain.Result, error) {
	r.s.mu.RLock()
	res, ok := r.s.results[token]
	r.s.mu.RUnlock()
	if !ok {
		return domain.Result{}, store.ErrNotFound
	}
	res.Payload = bytes.Clone(res.Payload)
	return res, nil
}

func (r *resultsRepo) DeleteResult(_ context.Context, token string) error {
	r.s.mu.Lock()
	delete(r.s.results, token)
	r.s.mu.Unlock()
	return nil
}

func (r *resultsRepo) DeleteExpiredResults(_ context.Context, olderThan time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := 0
	for token, res := range r.s.results {
		if res.UpdatedAt.Before(olderThan) {
			delete(r.s.results, token)
			deleted++
		}
	}
	return deleted, nil
}
