package domain

import "context"

// Reranker defines the interface for cross-encoder relevance scoring.
// Score evaluates every (query, document) pair in one batched call and
// returns scores parallel to documents, same length and order. Callers do
// the sorting; implementations must not reorder.
type Reranker interface {
	Score(ctx context.Context, query string, documents []string) ([]float32, error)

	// ModelName returns the model identifier for logging/debugging.
	ModelName() string
}
