package embedder

import (
	"context"
	"errors"
)

var ErrNoEmbedding = errors.New("no embedding returned")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
