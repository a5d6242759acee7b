package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"portfolio-catalog/internal/config"
)

type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *slog.Logger
}

// NewMinIOStore connects to MinIO, creates the bucket if missing and makes its
// objects publicly readable so gallery URLs need no signing.
func NewMinIOStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*MinIOStore, error) {
	log = log.With("component", "storage.minio")

	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIOBucket, err)
		}
		log.Info("created bucket", "bucket", cfg.MinIOBucket)
	}

	if err := client.SetBucketPolicy(ctx, cfg.MinIOBucket, publicReadPolicy(cfg.MinIOBucket)); err != nil {
		log.Warn("failed to set public bucket policy", "bucket", cfg.MinIOBucket, "error", err)
	}

	scheme := "http"
	if cfg.MinIOPublicUseSSL {
		scheme = "https"
	}

	return &MinIOStore{
		client:    client,
		bucket:    cfg.MinIOBucket,
		publicURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.MinIOPublicEndpoint, cfg.MinIOBucket),
		log:       log,
	}, nil
}

func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{"arn:aws:s3:::" + bucket + "/*"},
			},
		},
	}
	policyJSON, _ := json.Marshal(policy)
	return string(policyJSON)
}

func (s *MinIOStore) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, path, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

func (s *MinIOStore) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(paths))
	for _, p := range paths {
		objects <- minio.ObjectInfo{Key: p}
	}
	close(objects)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}

func (s *MinIOStore) PublicURL(path string) string {
	return s.publicURL + "/" + escapeKey(path)
}
