package upload

import (
	"context"
	"log/slog"
	"strings"

	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/metrics"
	"portfolio-catalog/internal/repository"
	"portfolio-catalog/internal/storage"
	"portfolio-catalog/internal/validation"
)

type Service interface {
	UploadFile(ctx context.Context, in domain.FileUploadInput) (*domain.MediaRecord, error)
	AddLink(ctx context.Context, in domain.LinkInput) (*domain.MediaRecord, error)
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
		log:   log.With("component", "upload"),
	}
}

// UploadFile stores the file (and a video's optional thumbnail) and then inserts the
// catalog row. Nothing is removed from storage if the insert fails.
func (s *service) UploadFile(ctx context.Context, in domain.FileUploadInput) (*domain.MediaRecord, error) {
	if err := validation.ValidateUpload(in); err != nil {
		metrics.Uploads.WithLabelValues(kindLabel(in.Kind), string(domain.SourceUploadedFile), "invalid").Inc()
		return nil, err
	}

	if in.Kind != domain.KindVideo && in.Thumbnail != nil {
		s.log.Debug("ignoring thumbnail for non-video upload", "kind", in.Kind)
		in.Thumbnail = nil
	}

	contentType := validation.NormalizeContentType(in.File.ContentType)
	primaryPath := storage.ObjectPath(kindDir(in.Kind), in.File.FileName)
	primaryURL, err := s.store.Put(ctx, primaryPath, in.File.Body, in.File.Size, contentType)
	if err != nil {
		metrics.Uploads.WithLabelValues(string(in.Kind), string(domain.SourceUploadedFile), "upload_error").Inc()
		return nil, &domain.UploadError{Path: primaryPath, Err: err}
	}

	record := &domain.MediaRecord{
		Kind:               in.Kind,
		SourceMode:         domain.SourceUploadedFile,
		PrimaryURL:         primaryURL,
		PrimaryStoragePath: &primaryPath,
		MimeOrLinkType:     contentType,
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Name:               strings.TrimSpace(in.Name),
		TypeDetail:         in.TypeDetail,
	}

	if in.Thumbnail != nil {
		s.attachThumbnail(ctx, record, *in.Thumbnail)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		orphans := record.StoragePaths()
		metrics.Uploads.WithLabelValues(string(in.Kind), string(domain.SourceUploadedFile), "persist_error").Inc()
		metrics.OrphanedObjects.WithLabelValues("insert_failed").Add(float64(len(orphans)))
		s.log.Error("catalog insert failed after upload, objects left in storage", "paths", orphans, "error", err)
		return nil, &domain.PersistError{Op: "create", Err: err}
	}

	metrics.Uploads.WithLabelValues(string(in.Kind), string(domain.SourceUploadedFile), "ok").Inc()
	s.log.Info("media uploaded", "id", record.ID, "kind", record.Kind, "path", primaryPath, "thumbnail", record.ThumbnailStoragePath != nil)
	return record, nil
}

// attachThumbnail is the one step allowed to fail: the upload continues without it.
func (s *service) attachThumbnail(ctx context.Context, record *domain.MediaRecord, thumb domain.FileUpload) {
	path := storage.ObjectPath(storage.DirThumbnails, thumb.FileName)
	url, err := s.store.Put(ctx, path, thumb.Body, thumb.Size, validation.NormalizeContentType(thumb.ContentType))
	if err != nil {
		metrics.ThumbnailsDegraded.Inc()
		s.log.Warn("thumbnail upload failed, continuing without thumbnail", "path", path, "error", err)
		return
	}
	record.ThumbnailURL = &url
	record.ThumbnailStoragePath = &path
}

func (s *service) AddLink(ctx context.Context, in domain.LinkInput) (*domain.MediaRecord, error) {
	if err := validation.ValidateLink(in); err != nil {
		metrics.Uploads.WithLabelValues(kindLabel(in.Kind), string(domain.SourceExternalLink), "invalid").Inc()
		return nil, err
	}

	linkType := strings.TrimSpace(in.LinkType)
	if linkType == "" {
		linkType = defaultLinkType(in.Kind)
	}

	record := &domain.MediaRecord{
		Kind:           in.Kind,
		SourceMode:     domain.SourceExternalLink,
		PrimaryURL:     in.URL,
		MimeOrLinkType: linkType,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Name:           strings.TrimSpace(in.Name),
		TypeDetail:     in.TypeDetail,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.Uploads.WithLabelValues(string(in.Kind), string(domain.SourceExternalLink), "persist_error").Inc()
		return nil, &domain.PersistError{Op: "create", Err: err}
	}

	metrics.Uploads.WithLabelValues(string(in.Kind), string(domain.SourceExternalLink), "ok").Inc()
	s.log.Info("media link added", "id", record.ID, "kind", record.Kind, "link_type", linkType)
	return record, nil
}

func kindDir(kind domain.MediaKind) string {
	if kind == domain.KindVideo {
		return storage.DirVideos
	}
	return storage.DirArtworks
}

func defaultLinkType(kind domain.MediaKind) string {
	if kind == domain.KindVideo {
		return domain.LinkTypeVideo
	}
	return domain.LinkTypeImage
}

// kindLabel bounds metric cardinality to the known kinds.
func kindLabel(kind domain.MediaKind) string {
	if !kind.IsValid() {
		return "unknown"
	}
	return string(kind)
}
