package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"portfolio-catalog/internal/domain"
)

type MediaRepository struct {
	mock.Mock
}

func (m *MediaRepository) List(ctx context.Context, filter domain.CatalogFilter) ([]domain.MediaRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MediaRecord), args.Error(1)
}

func (m *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaRecord), args.Error(1)
}

func (m *MediaRepository) Create(ctx context.Context, record *domain.MediaRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MediaRepository) UpdateFields(ctx context.Context, id uuid.UUID, input domain.UpdateMediaInput) (*domain.MediaRecord, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaRecord), args.Error(1)
}

func (m *MediaRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.MediaRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaRecord), args.Error(1)
}
