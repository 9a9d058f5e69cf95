package retriever

import "github.com/pgvector/pgvector-go"

// Literal renders a vector in the store's bracketed text form,
// e.g. [0.12,-0.04,0.5].
func Literal(vector []float32) string {
	return pgvector.NewVector(vector).String()
}
