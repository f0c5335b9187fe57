package objectstore

import (
	"Launchpad-Backend/internal/config"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioBackend writes objects to an S3-compatible bucket.
type MinioBackend struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

var _ Backend = (*MinioBackend)(nil)

// NewMinioBackend connects to the endpoint and makes sure the bucket exists.
func NewMinioBackend(ctx context.Context, cfg *config.Storage, log *zap.Logger) (*MinioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	log.Info("object storage connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))

	return &MinioBackend{client: client, bucket: cfg.Bucket, log: log}, nil
}

func (b *MinioBackend) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	return err
}
