package usecase

import (
	"context"

	"github.com/dashfin/finmirror/internal/domain"
)

// Delivery is one push from a standing query: either the complete
// current result set or a subscription error, never both.
type Delivery struct {
	Records []domain.Record
	Err     error
}

// CollectionWatcher opens standing queries against the remote store.
type CollectionWatcher interface {
	// Watch registers a standing query for the named collection,
	// ordered by creation time descending. The returned channel yields
	// the full current result set on every remote change, starting with
	// the state at registration. Transient failures arrive as
	// Delivery.Err; the channel closes when ctx is cancelled or the
	// connection is lost for good.
	Watch(ctx context.Context, collection string) (<-chan Delivery, error)
}

// CollectionWriter issues point writes against the remote store. The
// store assigns the id and creation timestamp on insert.
type CollectionWriter interface {
	Insert(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error)
	Replace(ctx context.Context, collection, id string, fields domain.RecordFields) error
	Delete(ctx context.Context, collection, id string) error
}

// IdentityProvider supplies the ownership of the current session at the
// moment a mutation is submitted. Nil means unauthenticated.
type IdentityProvider interface {
	Identity(ctx context.Context) *domain.Ownership
}

// IDGenerator generates unique record IDs.
type IDGenerator interface {
	Generate() string
}

// Mutator is the subset of the mutation use case an edit session
// dispatches to.
type Mutator interface {
	Create(ctx context.Context, fields domain.RecordFields) (*domain.Record, error)
	Update(ctx context.Context, id string, fields domain.RecordFields) error
}
