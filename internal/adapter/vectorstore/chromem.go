package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"petrorag/internal/domain"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore is the embedded vector backend. It keeps the whole index in
// process memory and optionally persists it under a local directory, so a
// single-node deployment needs no external vector database.
type ChromemStore struct {
	collection *chromem.Collection
	logger     *slog.Logger
}

// NewChromemStore opens or creates a persistent embedded index at path.
func NewChromemStore(path, collectionName string, logger *slog.Logger) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded index: %w", err)
	}
	return newChromemStore(db, collectionName, logger)
}

// NewInMemoryChromemStore creates a non-persistent embedded index. Used in
// tests and throwaway local runs.
func NewInMemoryChromemStore(collectionName string, logger *slog.Logger) (*ChromemStore, error) {
	return newChromemStore(chromem.NewDB(), collectionName, logger)
}

func newChromemStore(db *chromem.DB, collectionName string, logger *slog.Logger) (*ChromemStore, error) {
	collection, err := db.GetOrCreateCollection(collectionName, map[string]string{"hnsw:space": "cosine"}, rejectOnDemandEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", collectionName, err)
	}
	return &ChromemStore{
		collection: collection,
		logger:     logger,
	}, nil
}

// All vectors flow through domain.VectorEncoder before reaching the store, so
// the collection must never compute embeddings on its own.
func rejectOnDemandEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("embeddings must be precomputed")
}

func (s *ChromemStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	docCount := s.collection.Count()
	if docCount == 0 {
		return []domain.RetrievalResult{}, nil
	}
	// chromem rejects nResults above the document count.
	if k > docCount {
		k = docCount
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query embedded index: %w", err)
	}

	out := make([]domain.RetrievalResult, len(results))
	for i, r := range results {
		out[i] = domain.RetrievalResult{
			Document: r.Content,
			Metadata: domain.MetadataFromStrings(r.Metadata),
			Distance: 1 - r.Similarity,
		}
	}

	s.logger.Debug("embedded_index_queried",
		slog.Int("k", k),
		slog.Int("results", len(out)))

	return out, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		docs[i] = chromem.Document{
			ID:        id,
			Content:   rec.Document,
			Embedding: rec.Embedding,
			Metadata:  rec.Metadata.ToStrings(),
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents to embedded index: %w", err)
	}

	s.logger.Debug("embedded_index_upserted", slog.Int("count", len(records)))
	return nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

var _ domain.VectorIndex = (*ChromemStore)(nil)
