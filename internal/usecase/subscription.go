package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/dashfin/finmirror/internal/domain"
)

// Subscription owns one standing query and feeds its deliveries into a
// snapshot store. It reconnects with exponential backoff after transport
// failures until closed.
type Subscription struct {
	collection string
	store      *SnapshotStore
	logger     zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func openSubscription(watcher CollectionWatcher, collection string, store *SnapshotStore, logger zerolog.Logger) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Subscription{
		collection: collection,
		store:      store,
		logger:     logger,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go s.run(ctx, watcher)

	return s
}

// Collection returns the collection name this subscription watches.
func (s *Subscription) Collection() string {
	return s.collection
}

// Close tears down the standing query. It is idempotent, safe to call
// before any snapshot has arrived, and guarantees that no store write
// happens after it returns, even for a delivery already in flight.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.done
}

func (s *Subscription) run(ctx context.Context, watcher CollectionWatcher) {
	defer close(s.done)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0 // retry until Close

	for {
		ch, err := watcher.Watch(ctx, s.collection)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			s.deliverError(err)

			wait := b.NextBackOff()
			s.logger.Warn().
				Err(err).
				Str("collection", s.collection).
				Dur("retry_in", wait).
				Msg("standing query failed, reconnecting")

			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return
			}
		}

		open := true
		for open {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-ch:
				if !ok {
					open = false
					break
				}
				if delivery.Err != nil {
					s.deliverError(delivery.Err)
					continue
				}
				s.deliverSnapshot(delivery.Records)
				b.Reset()
			}
		}

		if ctx.Err() != nil {
			return
		}

		// The remote layer closed the channel underneath us. Re-open
		// the standing query: the last good snapshot stays visible in
		// the meantime.
		wait := b.NextBackOff()
		s.logger.Warn().
			Str("collection", s.collection).
			Dur("retry_in", wait).
			Msg("subscription channel closed, reopening")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// deliverSnapshot and deliverError gate on closed under mu, so a Close
// that returned can never be followed by a store write.

func (s *Subscription) deliverSnapshot(records []domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.store.Replace(records)
}

func (s *Subscription) deliverError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.store.Fail(err)
	s.logger.Warn().Err(err).Str("collection", s.collection).Msg("subscription error, keeping last snapshot")
}

// SubscriptionManager enforces the one-live-subscription-per-collection
// invariant for a snapshot store: opening a name that is already watched
// closes the previous subscription first, so deliveries are never
// duplicated.
type SubscriptionManager struct {
	watcher CollectionWatcher
	store   *SnapshotStore
	logger  zerolog.Logger

	mu     sync.Mutex
	active map[string]*Subscription
}

// NewSubscriptionManager creates a manager bound to one store.
func NewSubscriptionManager(watcher CollectionWatcher, store *SnapshotStore, logger zerolog.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		watcher: watcher,
		store:   store,
		logger:  logger,
		active:  make(map[string]*Subscription),
	}
}

// Open starts a standing query for the named collection, tearing down
// any existing subscription for the same name first.
func (m *SubscriptionManager) Open(collection string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.active[collection]; ok {
		prev.Close()
	}

	sub := openSubscription(m.watcher, collection, m.store, m.logger)
	m.active[collection] = sub

	m.logger.Info().Str("collection", collection).Msg("subscription opened")

	return sub
}

// CloseAll tears down every live subscription. Used on shutdown.
func (m *SubscriptionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, sub := range m.active {
		sub.Close()
		delete(m.active, name)
	}
}
