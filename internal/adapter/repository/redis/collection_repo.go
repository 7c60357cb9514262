package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

var quarantinedDocs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "finmirror_quarantined_documents_total",
		Help: "Documents dropped from snapshots because they failed validation",
	},
	[]string{"collection"},
)

// document is the JSON shape of one record inside the collection hash.
type document struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	OccurredOn  string    `json:"occurred_on,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerUID    string    `json:"owner_uid,omitempty"`
	OwnerEmail  string    `json:"owner_email,omitempty"`
}

// CollectionRepository implements usecase.CollectionWatcher and
// usecase.CollectionWriter on Redis. Each collection lives in one hash
// keyed by record id; every write publishes the collection name on a
// pub/sub channel and each watcher re-reads the full hash. Documents
// that fail validation are quarantined: logged, counted and dropped
// from the snapshot instead of poisoning it.
type CollectionRepository struct {
	client *redis.Client
	ids    usecase.IDGenerator
	logger zerolog.Logger
	now    func() time.Time
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(client *redis.Client, ids usecase.IDGenerator, logger zerolog.Logger) *CollectionRepository {
	return &CollectionRepository{
		client: client,
		ids:    ids,
		logger: logger,
		now:    time.Now,
	}
}

func hashKey(collection string) string {
	return "collection:" + collection
}

func channelName(collection string) string {
	return "collection-changed:" + collection
}

// Insert stores a new record and returns it with the generated id and
// creation timestamp.
func (r *CollectionRepository) Insert(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error) {
	if err := domain.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	record := domain.Record{
		ID:          r.ids.Generate(),
		Description: fields.Description,
		Amount:      fields.Amount,
		Kind:        fields.Kind,
		Status:      fields.Status,
		OccurredOn:  fields.OccurredOn,
		CreatedAt:   r.now().UTC(),
		Owner:       fields.Owner,
	}

	if err := r.store(ctx, collection, record); err != nil {
		return nil, err
	}

	return &record, nil
}

// Replace overwrites the editable fields of an existing record, keeping
// its creation timestamp.
func (r *CollectionRepository) Replace(ctx context.Context, collection, id string, fields domain.RecordFields) error {
	if err := domain.ValidateFields(fields); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	raw, err := r.client.HGet(ctx, hashKey(collection), id).Result()
	if err == redis.Nil {
		return domain.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: read %q: %v", domain.ErrWriteFailed, id, err)
	}

	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("%w: decode %q: %v", domain.ErrWriteFailed, id, err)
	}

	record := domain.Record{
		ID:          id,
		Description: fields.Description,
		Amount:      fields.Amount,
		Kind:        fields.Kind,
		Status:      fields.Status,
		OccurredOn:  fields.OccurredOn,
		CreatedAt:   doc.CreatedAt,
		Owner:       fields.Owner,
	}

	return r.store(ctx, collection, record)
}

// Delete removes a record.
func (r *CollectionRepository) Delete(ctx context.Context, collection, id string) error {
	removed, err := r.client.HDel(ctx, hashKey(collection), id).Result()
	if err != nil {
		return fmt.Errorf("%w: delete %q: %v", domain.ErrWriteFailed, id, err)
	}
	if removed == 0 {
		return domain.ErrRecordNotFound
	}

	return r.publish(ctx, collection)
}

func (r *CollectionRepository) store(ctx context.Context, collection string, record domain.Record) error {
	doc := document{
		ID:          record.ID,
		Description: record.Description,
		Amount:      record.Amount.String(),
		Kind:        string(record.Kind),
		Status:      string(record.Status),
		OccurredOn:  record.OccurredOn,
		CreatedAt:   record.CreatedAt,
	}
	if record.Owner != nil {
		doc.OwnerUID = record.Owner.UID
		doc.OwnerEmail = record.Owner.Email
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", domain.ErrWriteFailed, record.ID, err)
	}

	if err := r.client.HSet(ctx, hashKey(collection), record.ID, payload).Err(); err != nil {
		return fmt.Errorf("%w: write %q: %v", domain.ErrWriteFailed, record.ID, err)
	}

	return r.publish(ctx, collection)
}

func (r *CollectionRepository) publish(ctx context.Context, collection string) error {
	if err := r.client.Publish(ctx, channelName(collection), "changed").Err(); err != nil {
		return fmt.Errorf("%w: notify watchers: %v", domain.ErrWriteFailed, err)
	}

	return nil
}

// Watch opens a standing query over a collection. The channel receives
// the full result set immediately and again after every published
// change, and is closed when the pub/sub stream dies.
func (r *CollectionRepository) Watch(ctx context.Context, collection string) (<-chan usecase.Delivery, error) {
	sub := r.client.Subscribe(ctx, channelName(collection))

	// Force the SUBSCRIBE round trip so a dead broker fails Watch
	// instead of the first delivery.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %q: %w", collection, err)
	}

	ch := make(chan usecase.Delivery, 1)

	go func() {
		defer close(ch)
		defer sub.Close()

		deliver := func() bool {
			records, err := r.snapshot(ctx, collection)
			if err != nil {
				select {
				case ch <- usecase.Delivery{Err: err}:
				case <-ctx.Done():
				}
				return false
			}

			select {
			case ch <- usecase.Delivery{Records: records}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !deliver() {
			return
		}

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					if ctx.Err() == nil {
						r.logger.Warn().Str("collection", collection).Msg("pubsub stream lost")
					}
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()

	return ch, nil
}

func (r *CollectionRepository) snapshot(ctx context.Context, collection string) ([]domain.Record, error) {
	raw, err := r.client.HGetAll(ctx, hashKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("read collection %q: %w", collection, err)
	}

	records := make([]domain.Record, 0, len(raw))
	for id, payload := range raw {
		record, err := decodeDocument(payload)
		if err == nil {
			err = domain.ValidateRecord(record)
		}
		if err != nil {
			quarantinedDocs.WithLabelValues(collection).Inc()
			r.logger.Warn().
				Err(err).
				Str("collection", collection).
				Str("record_id", id).
				Msg("quarantined malformed document")
			continue
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	return records, nil
}

func decodeDocument(payload string) (domain.Record, error) {
	var doc document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return domain.Record{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: amount %q", domain.ErrMalformedRecord, doc.Amount)
	}

	record := domain.Record{
		ID:          doc.ID,
		Description: doc.Description,
		Amount:      amount,
		Kind:        domain.Kind(doc.Kind),
		Status:      domain.Status(doc.Status),
		OccurredOn:  doc.OccurredOn,
		CreatedAt:   doc.CreatedAt,
	}
	if doc.OwnerUID != "" {
		record.Owner = &domain.Ownership{UID: doc.OwnerUID, Email: doc.OwnerEmail}
	}

	return record, nil
}
