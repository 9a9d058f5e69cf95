package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/w-h-a/redflag/imagestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type gcsImageStore struct {
	options imagestore.Options
	client  *storage.Client
}

func (s *gcsImageStore) Put(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	w := s.client.Bucket(s.options.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %q to gcs: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close gcs writer for %q: %w", key, err)
	}

	return PublicURL(s.options.PublicBaseURL, s.options.Bucket, key), nil
}

func (s *gcsImageStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Bucket(s.options.Bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return imagestore.ErrNotFound
		}
		return fmt.Errorf("failed to delete %q in bucket %q: %w", key, s.options.Bucket, err)
	}

	return nil
}

func (s *gcsImageStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout > 0 {
		return context.WithTimeout(ctx, s.options.Timeout)
	}
	return context.WithCancel(ctx)
}

// PublicURL builds the browser-facing URL of an object.
func PublicURL(baseURL string, bucket string, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); len(base) > 0 {
		return fmt.Sprintf("%s/%s/%s", base, bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

func NewImageStore(opts ...imagestore.Option) imagestore.ImageStore {
	options := imagestore.NewOptions(opts...)

	if len(options.Bucket) == 0 {
		detail := "a bucket is required for the gcs image store"
		options.Logger.Error(detail)
		panic(detail)
	}

	s := &gcsImageStore{
		options: options,
	}

	if client, ok := ClientFrom(options.Context); ok {
		s.client = client
		return s
	}

	client, err := storage.NewClient(
		context.Background(),
		option.WithScopes(storage.ScopeReadWrite),
	)
	if err != nil {
		detail := "failed to create gcs client"
		options.Logger.Error(detail, zap.Error(err))
		panic(detail)
	}

	s.client = client

	return s
}
