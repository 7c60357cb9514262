package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dashfin/finmirror/internal/domain"
)

// MutationUseCase executes create, update and delete requests against
// the remote collection. It never touches the snapshot store and applies
// no optimistic patches: the local mirror converges only through the
// standing subscription's next delivery.
type MutationUseCase struct {
	writer     CollectionWriter
	collection string
	logger     zerolog.Logger
}

// NewMutationUseCase creates a new MutationUseCase.
func NewMutationUseCase(writer CollectionWriter, collection string, logger zerolog.Logger) *MutationUseCase {
	return &MutationUseCase{
		writer:     writer,
		collection: collection,
		logger:     logger,
	}
}

// Create inserts a new record. The remote store assigns the id and
// creation timestamp; the returned record carries both. Returning does
// not mean the snapshot reflects the write yet.
func (uc *MutationUseCase) Create(ctx context.Context, fields domain.RecordFields) (*domain.Record, error) {
	record, err := uc.writer.Insert(ctx, uc.collection, fields)
	if err != nil {
		uc.logger.Error().Err(err).Str("collection", uc.collection).Msg("create rejected")
		return nil, err
	}

	uc.logger.Debug().
		Str("collection", uc.collection).
		Str("record_id", record.ID).
		Msg("record created")

	return record, nil
}

// Update replaces the editable fields of the record with the given id.
// Fails with domain.ErrRecordNotFound when the id has vanished remotely.
func (uc *MutationUseCase) Update(ctx context.Context, id string, fields domain.RecordFields) error {
	if err := uc.writer.Replace(ctx, uc.collection, id, fields); err != nil {
		uc.logger.Error().Err(err).Str("collection", uc.collection).Str("record_id", id).Msg("update rejected")
		return err
	}

	uc.logger.Debug().Str("collection", uc.collection).Str("record_id", id).Msg("record updated")

	return nil
}

// Delete removes the record with the given id.
func (uc *MutationUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.writer.Delete(ctx, uc.collection, id); err != nil {
		uc.logger.Error().Err(err).Str("collection", uc.collection).Str("record_id", id).Msg("delete rejected")
		return err
	}

	uc.logger.Debug().Str("collection", uc.collection).Str("record_id", id).Msg("record deleted")

	return nil
}
