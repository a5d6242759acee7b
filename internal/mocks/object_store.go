package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type ObjectStore struct {
	mock.Mock
}

func (m *ObjectStore) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, path, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *ObjectStore) Remove(ctx context.Context, paths ...string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

func (m *ObjectStore) PublicURL(path string) string {
	args := m.Called(path)
	return args.String(0)
}
