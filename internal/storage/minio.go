// Package storage keeps signature images in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
)

// Config holds the object storage connection settings.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

var _ order.BlobStore = (*SignatureStore)(nil)

// SignatureStore uploads signature PNGs to a single bucket and returns
// publicly resolvable URLs for them.
type SignatureStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewSignatureStore connects to the object store and makes sure the bucket
// exists.
func NewSignatureStore(ctx context.Context, cfg Config) (*SignatureStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, "create bucket")
		}
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &SignatureStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload stores data under key and returns its public URL.
func (s *SignatureStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "put object")
	}
	return s.baseURL + "/" + key, nil
}

// Ping reports whether the bucket is reachable, for health checks.
func (s *SignatureStore) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return errors.Wrap(err, "storage ping")
	}
	return nil
}
