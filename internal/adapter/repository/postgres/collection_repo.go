package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

// notifyChannel is the LISTEN/NOTIFY channel the records trigger fires
// on. The notification payload carries the collection name.
const notifyChannel = "records_changed"

// CollectionRepository implements usecase.CollectionWatcher and
// usecase.CollectionWriter on top of PostgreSQL. Writers mutate the
// records table; a trigger fires pg_notify on every change and each
// watcher re-reads the full collection, so every delivery is a complete
// snapshot rather than a delta.
type CollectionRepository struct {
	pool   *pgxpool.Pool
	ids    usecase.IDGenerator
	logger zerolog.Logger
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(pool *pgxpool.Pool, ids usecase.IDGenerator, logger zerolog.Logger) *CollectionRepository {
	return &CollectionRepository{
		pool:   pool,
		ids:    ids,
		logger: logger,
	}
}

const insertRecordSQL = `
INSERT INTO records (id, collection, description, amount, kind, status, occurred_on, owner_uid, owner_email)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at`

// Insert stores a new record and returns it with the generated id and
// the database-assigned creation timestamp.
func (r *CollectionRepository) Insert(ctx context.Context, collection string, fields domain.RecordFields) (*domain.Record, error) {
	if err := domain.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	id := r.ids.Generate()
	ownerUID, ownerEmail := ownerToText(fields.Owner)

	var createdAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, insertRecordSQL,
		id,
		collection,
		fields.Description,
		decimalToNumeric(fields.Amount),
		string(fields.Kind),
		string(fields.Status),
		fields.OccurredOn,
		ownerUID,
		ownerEmail,
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert: %v", domain.ErrWriteFailed, err)
	}

	return &domain.Record{
		ID:          id,
		Description: fields.Description,
		Amount:      fields.Amount,
		Kind:        fields.Kind,
		Status:      fields.Status,
		OccurredOn:  fields.OccurredOn,
		CreatedAt:   createdAt.Time,
		Owner:       fields.Owner,
	}, nil
}

const replaceRecordSQL = `
UPDATE records
SET description = $3, amount = $4, kind = $5, status = $6, occurred_on = $7, owner_uid = $8, owner_email = $9
WHERE collection = $1 AND id = $2`

// Replace overwrites the editable fields of an existing record. The
// creation timestamp never changes.
func (r *CollectionRepository) Replace(ctx context.Context, collection, id string, fields domain.RecordFields) error {
	if err := domain.ValidateFields(fields); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	ownerUID, ownerEmail := ownerToText(fields.Owner)

	tag, err := r.pool.Exec(ctx, replaceRecordSQL,
		collection,
		id,
		fields.Description,
		decimalToNumeric(fields.Amount),
		string(fields.Kind),
		string(fields.Status),
		fields.OccurredOn,
		ownerUID,
		ownerEmail,
	)
	if err != nil {
		return fmt.Errorf("%w: update: %v", domain.ErrWriteFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// Delete removes a record.
func (r *CollectionRepository) Delete(ctx context.Context, collection, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("%w: delete: %v", domain.ErrWriteFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// Watch opens a standing query over a collection. The returned channel
// receives the full result set immediately and again after every
// change. It is closed when the stream dies; callers reconnect by
// calling Watch again.
func (r *CollectionRepository) Watch(ctx context.Context, collection string) (<-chan usecase.Delivery, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	ch := make(chan usecase.Delivery, 1)

	go func() {
		defer close(ch)
		defer conn.Release()

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

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.logger.Warn().Err(err).Str("collection", collection).Msg("notification stream lost")
				}
				return
			}
			if notification.Payload != collection {
				continue
			}
			if !deliver() {
				return
			}
		}
	}()

	return ch, nil
}

const snapshotSQL = `
SELECT id, description, amount, kind, status, occurred_on, owner_uid, owner_email, created_at
FROM records
WHERE collection = $1
ORDER BY created_at DESC, id DESC`

func (r *CollectionRepository) snapshot(ctx context.Context, collection string) ([]domain.Record, error) {
	rows, err := r.pool.Query(ctx, snapshotSQL, collection)
	if err != nil {
		return nil, fmt.Errorf("read collection %q: %w", collection, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var (
			record     domain.Record
			amount     pgtype.Numeric
			kind       string
			status     string
			ownerUID   pgtype.Text
			ownerEmail pgtype.Text
			createdAt  pgtype.Timestamptz
		)

		err := rows.Scan(
			&record.ID,
			&record.Description,
			&amount,
			&kind,
			&status,
			&record.OccurredOn,
			&ownerUID,
			&ownerEmail,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		record.Amount = numericToDecimal(amount)
		record.Kind = domain.Kind(kind)
		record.Status = domain.Status(status)
		record.CreatedAt = createdAt.Time
		record.Owner = textToOwner(ownerUID, ownerEmail)

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read collection %q: %w", collection, err)
	}

	return records, nil
}

func ownerToText(owner *domain.Ownership) (pgtype.Text, pgtype.Text) {
	if owner == nil {
		return pgtype.Text{}, pgtype.Text{}
	}

	return pgtype.Text{String: owner.UID, Valid: true}, pgtype.Text{String: owner.Email, Valid: true}
}

func textToOwner(uid, email pgtype.Text) *domain.Ownership {
	if !uid.Valid {
		return nil
	}

	return &domain.Ownership{UID: uid.String, Email: email.String}
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
