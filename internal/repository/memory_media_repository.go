package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-catalog/internal/domain"
)

// MemoryMediaRepository keeps the catalog in process memory. It backs
// CATALOG_DRIVER=memory and the service tests, and enforces the same row
// constraints as the postgres schema.
type MemoryMediaRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]memoryRow
	seq     uint64
	now     func() time.Time
}

type memoryRow struct {
	record domain.MediaRecord
	seq    uint64
}

func NewMemoryMediaRepository() *MemoryMediaRepository {
	return &MemoryMediaRepository{
		records: make(map[uuid.UUID]memoryRow),
		now:     time.Now,
	}
}

func (r *MemoryMediaRepository) List(_ context.Context, filter domain.CatalogFilter) ([]domain.MediaRecord, error) {
	r.mu.RLock()
	rows := make([]memoryRow, 0, len(r.records))
	for _, row := range r.records {
		if filter.Matches(row.record.Kind) {
			rows = append(rows, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].record.CreatedAt.Equal(rows[j].record.CreatedAt) {
			return rows[i].record.CreatedAt.After(rows[j].record.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	records := make([]domain.MediaRecord, len(rows))
	for i, row := range rows {
		records[i] = cloneRecord(row.record)
	}
	return records, nil
}

func (r *MemoryMediaRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.records[id]
	if !ok {
		return nil, domain.ErrMediaNotFound
	}
	record := cloneRecord(row.record)
	return &record, nil
}

func (r *MemoryMediaRepository) Create(_ context.Context, record *domain.MediaRecord) error {
	if err := record.CheckInvariants(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = uuid.New()
	record.CreatedAt = r.now()
	r.seq++
	r.records[record.ID] = memoryRow{record: cloneRecord(*record), seq: r.seq}
	return nil
}

func (r *MemoryMediaRepository) UpdateFields(_ context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error) {
	if input.IsEmpty() {
		return nil, domain.ErrNothingToUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.records[id]
	if !ok {
		return nil, domain.ErrMediaNotFound
	}

	if input.Title.Set {
		row.record.Title = valueOrEmpty(input.Title.Value)
	}
	if input.Description.Set {
		row.record.Description = valueOrEmpty(input.Description.Value)
	}
	if input.Name.Set {
		row.record.Name = valueOrEmpty(input.Name.Value)
	}
	if input.TypeDetail.Set {
		row.record.TypeDetail = cloneString(input.TypeDetail.Value)
	}
	r.records[id] = row

	record := cloneRecord(row.record)
	return &record, nil
}

func (r *MemoryMediaRepository) Delete(_ context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.records[id]
	if !ok {
		return nil, domain.ErrMediaNotFound
	}
	delete(r.records, id)
	return &row.record, nil
}

func cloneRecord(r domain.MediaRecord) domain.MediaRecord {
	r.PrimaryStoragePath = cloneString(r.PrimaryStoragePath)
	r.TypeDetail = cloneString(r.TypeDetail)
	r.ThumbnailURL = cloneString(r.ThumbnailURL)
	r.ThumbnailStoragePath = cloneString(r.ThumbnailStoragePath)
	return r
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
