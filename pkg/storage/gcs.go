package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage stores documents in a Google Cloud Storage bucket.
type GCSStorage struct {
	client        *gcs.Client
	bucket        *gcs.BucketHandle
	bucketName    string
	publicBaseURL string
}

// NewGCSStorage opens a client for bucket. An empty credentialsFile falls back
// to application default credentials. publicBaseURL overrides the
// storage.googleapis.com URL returned for stored objects.
func NewGCSStorage(ctx context.Context, bucket, credentialsFile, publicBaseURL string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStorage{client: client, bucket: client.Bucket(bucket), bucketName: bucket, publicBaseURL: publicBaseURL}, nil
}

// Put streams r into the object named key.
func (s *GCSStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close() //nolint:errcheck
		return "", fmt.Errorf("write gcs object %s/%s: %w", s.bucketName, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalise gcs object %s/%s: %w", s.bucketName, key, err)
	}
	return joinURL(s.publicBaseURL, key), nil
}

// Delete removes the object named key.
func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object %s/%s: %w", s.bucketName, key, err)
	}
	return nil
}

// Close releases the client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
