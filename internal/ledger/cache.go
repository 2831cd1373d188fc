package ledger

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store memoizes loaded datasets keyed by cleaned file path. Each path is
// parsed at most once per process; concurrent callers for the same path
// share one load via singleflight and afterwards read the immutable
// snapshot without locking.
type Store struct {
	loader *Loader
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[string]*Dataset
}

// NewStore creates a dataset store backed by the given loader.
func NewStore(loader *Loader) *Store {
	return &Store{
		loader: loader,
		cache:  make(map[string]*Dataset),
	}
}

// Load returns the cached dataset for path, loading it on first use.
// A failed load is not cached, so a corrected file can be retried.
func (s *Store) Load(ctx context.Context, path string) (*Dataset, error) {
	key := filepath.Clean(path)

	s.mu.RLock()
	ds, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a concurrent call may have
		// populated the cache between the RUnlock and Do.
		s.mu.RLock()
		cached, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded, err := s.loader.Load(ctx, key)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[key] = loaded
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Cached returns the snapshot for path without triggering a load.
func (s *Store) Cached(path string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.cache[filepath.Clean(path)]
	return ds, ok
}

// Invalidate drops the cached snapshot for path. Intended for tests and
// tooling; the dashboard itself never reloads within a session.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, filepath.Clean(path))
}
