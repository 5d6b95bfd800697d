// Package minio stores disco cover images in a MinIO/S3 bucket
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	// Endpoint with or without scheme, "https://" turns TLS on
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string

	// Base URL objects are served from. If empty, bucket URL on the endpoint is used
	PublicURL string
}

type ImageStore struct {
	bucket     string
	publicBase string
	client     *mclient.Client
}

// Create client and check bucket exists
func New(ctx context.Context, cfg Config) (*ImageStore, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client error: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check error: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	publicBase := strings.TrimRight(cfg.PublicURL, "/")
	if publicBase == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		publicBase = scheme + "://" + endpoint + "/" + cfg.Bucket
	}

	return &ImageStore{
		bucket:     cfg.Bucket,
		publicBase: publicBase,
		client:     client,
	}, nil
}

// Upload image under the key and return URL it is served from
func (s *ImageStore) PutImage(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put error: %w", err)
	}

	return s.publicBase + "/" + key, nil
}
