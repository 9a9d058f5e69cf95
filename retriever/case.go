package retriever

import "github.com/google/uuid"

type Case struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type Neighbor struct {
	CaseId   uuid.UUID `json:"case_id"`
	Content  string    `json:"content"`
	Distance float64   `json:"distance"`
}
