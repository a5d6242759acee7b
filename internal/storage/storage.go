package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"portfolio-catalog/internal/config"
)

// ObjectStore is path-keyed blob storage. Paths are chosen by the caller and must be
// unique within the bucket.
type ObjectStore interface {
	// Put writes the object and returns its public URL.
	Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error)
	// Remove deletes every path, attempting all of them even if some fail.
	Remove(ctx context.Context, paths ...string) error
	PublicURL(path string) string
}

// New builds the object store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		return NewMinIOStore(ctx, cfg, log)
	case "s3":
		return NewS3Store(ctx, cfg, log)
	case "memory":
		return NewMemoryStore("http://localhost:" + cfg.Port + "/objects"), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// escapeKey escapes each path segment, keeping the separators.
func escapeKey(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
