package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/retriever"
)

type memoryRetriever struct {
	options retriever.Options
	cases   []retriever.Case
	mtx     sync.RWMutex
}

func (r *memoryRetriever) Search(ctx context.Context, vector []float32, limit int) ([]retriever.Neighbor, error) {
	if limit < 1 || len(vector) == 0 {
		return nil, nil
	}

	r.mtx.RLock()
	defer r.mtx.RUnlock()

	candidates := make([]retriever.Neighbor, 0, len(r.cases))

	for _, c := range r.cases {
		candidates = append(candidates, retriever.Neighbor{
			CaseId:   c.Id,
			Content:  c.Content,
			Distance: retriever.CosineDistance(vector, c.Embedding),
		})
	}

	// stable so that ties keep insertion order
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (r *memoryRetriever) Store(ctx context.Context, c retriever.Case) (uuid.UUID, error) {
	if r.options.Dimensions > 0 && len(c.Embedding) != r.options.Dimensions {
		return uuid.Nil, fmt.Errorf("embedding has %d dimensions, want %d", len(c.Embedding), r.options.Dimensions)
	}

	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}

	cpy := make([]float32, len(c.Embedding))
	copy(cpy, c.Embedding)
	c.Embedding = cpy

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.cases = append(r.cases, c)

	return c.Id, nil
}

func (r *memoryRetriever) Get(ctx context.Context, ids []uuid.UUID) ([]retriever.Case, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	var cases []retriever.Case

	for _, id := range ids {
		for _, c := range r.cases {
			if c.Id == id {
				c.Embedding = nil
				cases = append(cases, c)
				break
			}
		}
	}

	return cases, nil
}

func NewRetriever(opts ...retriever.Option) retriever.Retriever {
	options := retriever.NewOptions(opts...)

	r := &memoryRetriever{
		options: options,
		cases:   []retriever.Case{},
		mtx:     sync.RWMutex{},
	}

	return r
}
