package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"petrorag/internal/domain"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// payloadDocumentKey holds the chunk text inside a Qdrant point payload. The
// remaining payload keys carry chunk metadata.
const payloadDocumentKey = "document"

// QdrantStore is the remote vector backend for deployments where the index
// outgrows a single process.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// NewQdrantStore connects to Qdrant and ensures the collection exists with a
// cosine distance index of the given vector size.
// urlStr is the HTTP endpoint (e.g. http://localhost:6333); the gRPC port is
// derived as HTTP port + 1.
func NewQdrantStore(ctx context.Context, urlStr, collection string, vectorSize int, logger *slog.Logger) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &QdrantStore{
		client:     client,
		collection: collection,
		logger:     logger,
	}
	if err := store.ensureCollection(ctx, vectorSize); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	s.logger.Info("creating_qdrant_collection",
		slog.String("collection", s.collection),
		slog.Int("vector_size", vectorSize))

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		document, meta := splitPayload(point.Payload)
		results = append(results, domain.RetrievalResult{
			Document: document,
			Metadata: domain.MetadataFromStrings(meta),
			// Qdrant reports cosine similarity; the pipeline works in distances.
			Distance: 1 - point.Score,
		})
	}

	s.logger.Debug("qdrant_queried",
		slog.String("collection", s.collection),
		slog.Int("k", k),
		slog.Int("results", len(results)))

	return results, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}

		payload := map[string]any{payloadDocumentKey: rec.Document}
		for key, value := range rec.Metadata.ToStrings() {
			payload[key] = value
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(rec.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	s.logger.Debug("qdrant_upserted",
		slog.String("collection", s.collection),
		slog.Int("count", len(records)))
	return nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(count), nil
}

// Dump walks the whole collection in ID order and hands each batch to fn.
// Scroll pages are keyed on the last seen point ID, which scroll treats as
// inclusive, so every page after the first drops its leading point.
func (s *QdrantStore) Dump(ctx context.Context, batchSize int, fn func([]domain.VectorRecord) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	limit := uint32(batchSize)
	var offset *qdrant.PointId

	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return fmt.Errorf("failed to scroll collection: %w", err)
		}
		lastPage := len(points) < batchSize
		if offset != nil && len(points) > 0 {
			points = points[1:]
		}
		if len(points) == 0 {
			return nil
		}

		batch := make([]domain.VectorRecord, 0, len(points))
		for _, point := range points {
			document, meta := splitPayload(point.Payload)
			var embedding []float32
			if vec := point.Vectors.GetVector(); vec != nil {
				embedding = vec.Data
			}
			batch = append(batch, domain.VectorRecord{
				ID:        point.Id.GetUuid(),
				Document:  document,
				Embedding: embedding,
				Metadata:  domain.MetadataFromStrings(meta),
			})
		}
		if err := fn(batch); err != nil {
			return err
		}

		if lastPage {
			return nil
		}
		offset = points[len(points)-1].Id
	}
}

// splitPayload separates the document text from the metadata keys.
func splitPayload(payload map[string]*qdrant.Value) (string, map[string]string) {
	document := ""
	meta := make(map[string]string, len(payload))
	for key, value := range payload {
		if value == nil {
			continue
		}
		str := value.GetStringValue()
		if key == payloadDocumentKey {
			document = str
			continue
		}
		if str != "" {
			meta[key] = str
		}
	}
	return document, meta
}

var _ domain.VectorIndex = (*QdrantStore)(nil)
var _ domain.VectorIndexExporter = (*QdrantStore)(nil)
