package mutation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/metrics"
	"portfolio-catalog/internal/repository"
	"portfolio-catalog/internal/storage"
)

const removeTimeout = 30 * time.Second

// DeleteTarget names a record and the objects the caller knows belong to it. When
// both paths are nil the paths stored on the deleted row are used.
type DeleteTarget struct {
	ID                   uuid.UUID
	PrimaryStoragePath   *string
	ThumbnailStoragePath *string
}

func (t DeleteTarget) paths() []string {
	var paths []string
	if t.PrimaryStoragePath != nil {
		paths = append(paths, *t.PrimaryStoragePath)
	}
	if t.ThumbnailStoragePath != nil {
		paths = append(paths, *t.ThumbnailStoragePath)
	}
	return paths
}

type Service interface {
	Edit(ctx context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error)
	Delete(ctx context.Context, target DeleteTarget) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  repository.MediaRepository
	store storage.ObjectStore
	log   *slog.Logger
}

func NewService(repo repository.MediaRepository, store storage.ObjectStore, log *slog.Logger) Service {
	return &service{
		repo:  repo,
		store: store,
		log:   log.With("component", "mutation"),
	}
}

// Edit writes only the fields set in input. Storage and location fields are not editable.
func (s *service) Edit(ctx context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error) {
	if input.IsEmpty() {
		record, err := s.repo.GetByID(ctx, id)
		if err != nil {
			metrics.Edits.WithLabelValues("persist_error").Inc()
			return nil, &domain.PersistError{Op: "update", Err: err}
		}
		metrics.Edits.WithLabelValues("noop").Inc()
		return record, nil
	}

	record, err := s.repo.UpdateFields(ctx, id, input)
	if err != nil {
		metrics.Edits.WithLabelValues("persist_error").Inc()
		return nil, &domain.PersistError{Op: "update", Err: err}
	}

	metrics.Edits.WithLabelValues("ok").Inc()
	s.log.Info("media edited", "id", id)
	return record, nil
}

// Delete removes the catalog row, then makes one attempt at each backing object.
// Only the row deletion can fail the call.
func (s *service) Delete(ctx context.Context, target DeleteTarget) error {
	deleted, err := s.repo.Delete(ctx, target.ID)
	if err != nil {
		metrics.Deletes.WithLabelValues("persist_error").Inc()
		return &domain.PersistError{Op: "delete", Err: err}
	}

	paths := target.paths()
	if len(paths) == 0 {
		paths = deleted.StoragePaths()
	}

	// The row is gone; finish the cleanup even if the caller went away.
	removeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
	defer cancel()

	for _, path := range paths {
		if err := s.store.Remove(removeCtx, path); err != nil {
			metrics.OrphanedObjects.WithLabelValues("delete_failed").Inc()
			s.log.Warn("failed to remove object after deleting record", "id", target.ID, "path", path, "error", err)
		}
	}

	metrics.Deletes.WithLabelValues("ok").Inc()
	s.log.Info("media deleted", "id", target.ID, "objects", len(paths))
	return nil
}

func (s *service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.Delete(ctx, DeleteTarget{ID: id})
}
