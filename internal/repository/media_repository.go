package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"portfolio-catalog/internal/domain"
)

type MediaRepository interface {
	// List returns every record matching filter, newest first. No limit is applied.
	List(ctx context.Context, filter domain.CatalogFilter) ([]domain.MediaRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error)
	// Create assigns ID and CreatedAt on the passed record.
	Create(ctx context.Context, record *domain.MediaRecord) error
	// UpdateFields writes only the fields set in input and returns the updated row.
	UpdateFields(ctx context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error)
	// Delete removes the row and returns it as it was.
	Delete(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error)
}

const mediaColumns = `id, kind, source_mode, primary_url, primary_storage_path, mime_or_link_type,
	title, description, name, type_detail, thumbnail_url, thumbnail_storage_path, created_at`

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.MediaRecord, error) {
	records := []domain.MediaRecord{}

	if filter.Kind != nil {
		query := `SELECT ` + mediaColumns + ` FROM media_records WHERE kind = $1 ORDER BY created_at DESC`
		err := r.db.SelectContext(ctx, &records, query, *filter.Kind)
		return records, err
	}

	query := `SELECT ` + mediaColumns + ` FROM media_records ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &records, query)
	return records, err
}

func (r *mediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	var record domain.MediaRecord
	query := `SELECT ` + mediaColumns + ` FROM media_records WHERE id = $1`
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMediaNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *mediaRepository) Create(ctx context.Context, record *domain.MediaRecord) error {
	query := `
		INSERT INTO media_records (id, kind, source_mode, primary_url, primary_storage_path, mime_or_link_type,
			title, description, name, type_detail, thumbnail_url, thumbnail_storage_path)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, query,
		record.Kind, record.SourceMode, record.PrimaryURL, record.PrimaryStoragePath, record.MimeOrLinkType,
		record.Title, record.Description, record.Name, record.TypeDetail,
		record.ThumbnailURL, record.ThumbnailStoragePath,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *mediaRepository) UpdateFields(ctx context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error) {
	if input.IsEmpty() {
		return nil, domain.ErrNothingToUpdate
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.Title.Set {
		add("title", valueOrEmpty(input.Title.Value))
	}
	if input.Description.Set {
		add("description", valueOrEmpty(input.Description.Value))
	}
	if input.Name.Set {
		add("name", valueOrEmpty(input.Name.Value))
	}
	if input.TypeDetail.Set {
		add("type_detail", input.TypeDetail.Value)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE media_records SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), mediaColumns)

	var record domain.MediaRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMediaNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	var record domain.MediaRecord
	query := `DELETE FROM media_records WHERE id = $1 RETURNING ` + mediaColumns
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMediaNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Text columns are NOT NULL; an explicit null clears them to "".
func valueOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
