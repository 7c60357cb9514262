package usecase

import (
	"sort"
	"sync"

	"github.com/dashfin/finmirror/internal/domain"
)

// SnapshotStore holds the locally mirrored record collection. It is the
// single source of truth for every derived view: the subscription is its
// only writer, and each delivery replaces the contents wholesale; the
// store never merges.
type SnapshotStore struct {
	mu        sync.RWMutex
	records   []domain.Record
	loading   bool
	err       error
	listeners map[int]func()
	nextID    int
}

// NewSnapshotStore creates an empty store in the loading state. Loading
// stays true until the first snapshot or error arrives, then is false
// forever.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		loading:   true,
		listeners: make(map[int]func()),
	}
}

// Replace atomically installs records as the current snapshot and clears
// any previous error. An empty slice is a legitimate zero-record state,
// distinct from loading. Called only by the subscription.
func (s *SnapshotStore) Replace(records []domain.Record) {
	copied := make([]domain.Record, len(records))
	copy(copied, records)

	s.mu.Lock()
	s.records = copied
	s.loading = false
	s.err = nil
	fns := s.listenerSlice()
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Fail records a subscription error. The last good snapshot is kept:
// consumers keep showing stale data alongside the raised error flag.
func (s *SnapshotStore) Fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.err = err
	fns := s.listenerSlice()
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Records returns a copy of the current snapshot.
func (s *SnapshotStore) Records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]domain.Record, len(s.records))
	copy(copied, s.records)
	return copied
}

// Loading reports whether no delivery has arrived yet.
func (s *SnapshotStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error of the last delivery, nil if it carried a
// snapshot.
func (s *SnapshotStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// State reads records, loading flag and error as one consistent triple.
func (s *SnapshotStore) State() ([]domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]domain.Record, len(s.records))
	copy(copied, s.records)
	return copied, s.loading, s.err
}

// Subscribe registers fn to run synchronously after every delivery,
// snapshot or error alike. The returned func unregisters it.
func (s *SnapshotStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// listenerSlice snapshots the listeners in registration order. Callers
// must hold s.mu.
func (s *SnapshotStore) listenerSlice() []func() {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	return fns
}
