// Package storage wraps the MinIO client behind the small blob interface
// the literature service needs.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"retrack/pkg/config"
)

type BlobStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewBlobStore(ctx context.Context, cfg config.BlobConfig, logger *zap.Logger) (*BlobStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("Created blob bucket", zap.String("bucket", cfg.Bucket))
	}

	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

func (b *BlobStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		b.logger.Error("Failed to store blob", zap.Error(err), zap.String("object", objectName))
		return fmt.Errorf("put object %s: %w", objectName, err)
	}
	b.logger.Info("Blob stored", zap.String("object", objectName), zap.Int64("size", size))
	return nil
}

func (b *BlobStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		b.logger.Error("Failed to fetch blob", zap.Error(err), zap.String("object", objectName))
		return nil, fmt.Errorf("get object %s: %w", objectName, err)
	}
	return obj, nil
}

func (b *BlobStore) Remove(ctx context.Context, objectName string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		b.logger.Error("Failed to remove blob", zap.Error(err), zap.String("object", objectName))
		return fmt.Errorf("remove object %s: %w", objectName, err)
	}
	return nil
}
