package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

// FakeCollection is an in-memory remote document collection with full
// push redelivery, implementing usecase.CollectionWatcher and
// usecase.CollectionWriter. It behaves like the real store: ids and
// creation timestamps are assigned on insert, every write redelivers the
// complete result set to all watchers, newest first.
type FakeCollection struct {
	mu       sync.Mutex
	seq      int
	base     time.Time
	docs     map[string]map[string]domain.Record
	watchers map[int]*fakeWatcher
	nextID   int

	InsertFunc  func(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error)
	ReplaceFunc func(ctx context.Context, collection, id string, fields domain.RecordFields) error
	DeleteFunc  func(ctx context.Context, collection, id string) error
	WatchFunc   func(ctx context.Context, collection string) (<-chan usecase.Delivery, error)
}

type fakeWatcher struct {
	collection string
	ch         chan usecase.Delivery
}

// NewFakeCollection creates an empty fake remote store.
func NewFakeCollection() *FakeCollection {
	return &FakeCollection{
		base:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		docs:     make(map[string]map[string]domain.Record),
		watchers: make(map[int]*fakeWatcher),
	}
}

func (f *FakeCollection) Insert(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error) {
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, collection, fields)
	}

	if err := domain.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	f.mu.Lock()
	f.seq++
	record := domain.Record{
		ID:          fmt.Sprintf("rec-%06d", f.seq),
		Description: fields.Description,
		Amount:      fields.Amount,
		Kind:        fields.Kind,
		Status:      fields.Status,
		OccurredOn:  fields.OccurredOn,
		CreatedAt:   f.base.Add(time.Duration(f.seq) * time.Second),
		Owner:       fields.Owner,
	}

	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]domain.Record)
	}
	f.docs[collection][record.ID] = record

	f.broadcastLocked(collection)
	f.mu.Unlock()

	return &record, nil
}

func (f *FakeCollection) Replace(ctx context.Context, collection, id string, fields domain.RecordFields) error {
	if f.ReplaceFunc != nil {
		return f.ReplaceFunc(ctx, collection, id, fields)
	}

	if err := domain.ValidateFields(fields); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.docs[collection][id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	existing.Description = fields.Description
	existing.Amount = fields.Amount
	existing.Kind = fields.Kind
	existing.Status = fields.Status
	existing.OccurredOn = fields.OccurredOn
	existing.Owner = fields.Owner
	f.docs[collection][id] = existing

	f.broadcastLocked(collection)

	return nil
}

func (f *FakeCollection) Delete(ctx context.Context, collection, id string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, collection, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.docs[collection][id]; !ok {
		return domain.ErrRecordNotFound
	}

	delete(f.docs[collection], id)
	f.broadcastLocked(collection)

	return nil
}

func (f *FakeCollection) Watch(ctx context.Context, collection string) (<-chan usecase.Delivery, error) {
	if f.WatchFunc != nil {
		return f.WatchFunc(ctx, collection)
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	w := &fakeWatcher{
		collection: collection,
		ch:         make(chan usecase.Delivery, 64),
	}
	f.watchers[id] = w
	w.ch <- usecase.Delivery{Records: f.snapshotLocked(collection)}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		if _, ok := f.watchers[id]; ok {
			delete(f.watchers, id)
			close(w.ch)
		}
		f.mu.Unlock()
	}()

	return w.ch, nil
}

// EmitError pushes a subscription error to every watcher of collection.
func (f *FakeCollection) EmitError(collection string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, w := range f.watchers {
		if w.collection == collection {
			w.ch <- usecase.Delivery{Err: err}
		}
	}
}

// DropWatchers closes every watch channel for collection without
// touching the data, simulating a lost connection.
func (f *FakeCollection) DropWatchers(collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, w := range f.watchers {
		if w.collection == collection {
			delete(f.watchers, id)
			close(w.ch)
		}
	}
}

// WatcherCount reports the number of live watchers for collection.
func (f *FakeCollection) WatcherCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, w := range f.watchers {
		if w.collection == collection {
			n++
		}
	}
	return n
}

// Records returns the current result set for collection, newest first.
func (f *FakeCollection) Records(collection string) []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked(collection)
}

func (f *FakeCollection) snapshotLocked(collection string) []domain.Record {
	records := make([]domain.Record, 0, len(f.docs[collection]))
	for _, r := range f.docs[collection] {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records
}

func (f *FakeCollection) broadcastLocked(collection string) {
	records := f.snapshotLocked(collection)
	for _, w := range f.watchers {
		if w.collection == collection {
			w.ch <- usecase.Delivery{Records: records}
		}
	}
}

// StubIdentity is a fixed IdentityProvider.
type StubIdentity struct {
	Owner *domain.Ownership
}

func (s *StubIdentity) Identity(ctx context.Context) *domain.Ownership {
	return s.Owner
}

// StubMutator is a func-field stub of usecase.Mutator.
type StubMutator struct {
	CreateFunc func(ctx context.Context, fields domain.RecordFields) (*domain.Record, error)
	UpdateFunc func(ctx context.Context, id string, fields domain.RecordFields) error
}

func (m *StubMutator) Create(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, fields)
	}
	record := domain.Record{ID: "mock-id", CreatedAt: time.Now()}
	return &record, nil
}

func (m *StubMutator) Update(ctx context.Context, id string, fields domain.RecordFields) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fields)
	}
	return nil
}
