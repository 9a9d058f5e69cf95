package analysis

import (
	"github.com/google/uuid"
	"github.com/w-h-a/redflag/retriever"
)

// Candidate is a retrieved historical case with its derived score and rank.
type Candidate struct {
	CaseId     uuid.UUID
	Content    string
	Distance   float64
	Similarity float64
	Rank       int
}

// rank keeps the store's order. Similarity is 1 - distance and may be negative.
func rank(neighbors []retriever.Neighbor, limit int) []Candidate {
	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}

	candidates := make([]Candidate, 0, len(neighbors))
	for i, n := range neighbors {
		candidates = append(candidates, Candidate{
			CaseId:     n.CaseId,
			Content:    n.Content,
			Distance:   n.Distance,
			Similarity: 1 - n.Distance,
			Rank:       i + 1,
		})
	}

	return candidates
}
