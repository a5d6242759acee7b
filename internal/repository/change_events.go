package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/domain"
)

// changeEventRepository announces every committed write on the change feed. It is the
// notification source for backends without database triggers.
type changeEventRepository struct {
	MediaRepository
	publisher changefeed.Publisher
	log       *slog.Logger
}

func WithChangeEvents(repo MediaRepository, publisher changefeed.Publisher, log *slog.Logger) MediaRepository {
	return &changeEventRepository{
		MediaRepository: repo,
		publisher:       publisher,
		log:             log.With("component", "repository.change_events"),
	}
}

func (r *changeEventRepository) Create(ctx context.Context, record *domain.MediaRecord) error {
	if err := r.MediaRepository.Create(ctx, record); err != nil {
		return err
	}
	r.publish(ctx, changefeed.OpInsert, record.Kind, record.ID)
	return nil
}

func (r *changeEventRepository) UpdateFields(ctx context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error) {
	record, err := r.MediaRepository.UpdateFields(ctx, id, input)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, changefeed.OpUpdate, record.Kind, record.ID)
	return record, nil
}

func (r *changeEventRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	record, err := r.MediaRepository.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, changefeed.OpDelete, record.Kind, record.ID)
	return record, nil
}

// The write is already committed, so a failed publish only delays other views.
func (r *changeEventRepository) publish(ctx context.Context, op changefeed.Op, kind domain.MediaKind, id uuid.UUID) {
	event := changefeed.Event{Op: op, Kind: kind, ID: id}
	if err := r.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		r.log.Error("failed to publish change event", "op", op, "id", id, "error", err)
	}
}
