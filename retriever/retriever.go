package retriever

import (
	"context"

	"github.com/google/uuid"
)

// Retriever answers nearest-neighbor queries over the catalog of
// historical cases. Neighbors come back ordered by ascending distance
// and are never re-sorted by callers.
type Retriever interface {
	Search(ctx context.Context, vector []float32, limit int) ([]Neighbor, error)
	// Get returns the catalog entries among ids without their embeddings.
	// Unknown ids are skipped.
	Get(ctx context.Context, ids []uuid.UUID) ([]Case, error)
	Store(ctx context.Context, c Case) (uuid.UUID, error)
}
