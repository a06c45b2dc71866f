package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ObjectStore uploads report media and returns a retrievable URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// NewObjectStoreFromEnv picks GCS in production (Cloud Run sets
// K_SERVICE; GOOGLE_APPLICATION_CREDENTIALS implies a service account)
// and local-disk storage for development.
func NewObjectStoreFromEnv(ctx context.Context) (ObjectStore, error) {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""

	if useGCS {
		return NewGCSObjectStore(ctx, os.Getenv("GCS_BUCKET"))
	}
	return NewLocalObjectStore("./uploads", "/uploads"), nil
}

// GCSObjectStore uploads to a Google Cloud Storage bucket.
type GCSObjectStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSObjectStore connects using ADC, or explicit JSON credentials via
// GCS_CREDENTIALS_JSON for local use.
func NewGCSObjectStore(ctx context.Context, bucket string) (*GCSObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required")
	}

	var client *gcs.Client
	var err error
	if credJSON := strings.TrimSpace(os.Getenv("GCS_CREDENTIALS_JSON")); credJSON != "" {
		client, err = gcs.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		client, err = gcs.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	return &GCSObjectStore{client: client, bucket: bucket}, nil
}

// Upload writes the bytes and returns the public URL.
func (s *GCSObjectStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for %s: %w", objectName, err)
	}

	return s.PublicURL(objectName), nil
}

// PublicURL derives the retrievable URL for a stored object.
func (s *GCSObjectStore) PublicURL(objectName string) string {
	if base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL")); base != "" {
		return strings.TrimRight(base, "/") + "/" + objectName
	}
	return "https://storage.googleapis.com/" + s.bucket + "/" + objectName
}

// Close releases the underlying client.
func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

// LocalObjectStore writes uploads to a local directory, for development.
type LocalObjectStore struct {
	dir     string
	baseURL string
}

// NewLocalObjectStore stores files under dir and serves them at baseURL.
func NewLocalObjectStore(dir, baseURL string) *LocalObjectStore {
	return &LocalObjectStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes the file to disk and returns its serving path.
func (s *LocalObjectStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	target := filepath.Join(s.dir, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return s.baseURL + "/" + objectName, nil
}
