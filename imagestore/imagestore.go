package imagestore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("image not found")

// ImageStore holds uploaded screenshots and hands back a URL for each.
type ImageStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
