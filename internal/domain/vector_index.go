package domain

import "context"

// VectorRecord is one stored entry of the index, used for ingestion and
// export. Embedding may be empty on upsert paths where the backend computes
// it, but every backend in this repo receives precomputed embeddings.
type VectorRecord struct {
	ID        string
	Document  string
	Embedding []float32
	Metadata  ChunkMetadata
}

// VectorIndex is the similarity-search contract the pipeline depends on.
// Query returns at most k candidates ranked by the index's own relevance
// order; the pipeline never re-sorts them before reranking.
type VectorIndex interface {
	Query(ctx context.Context, embedding []float32, k int) ([]RetrievalResult, error)
	Upsert(ctx context.Context, records []VectorRecord) error
	Count(ctx context.Context) (int, error)
}

// VectorIndexExporter is implemented by backends that can stream their full
// contents in batches, for copying a collection between backends.
type VectorIndexExporter interface {
	Dump(ctx context.Context, batchSize int, fn func([]VectorRecord) error) error
}
