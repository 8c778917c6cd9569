package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"petrorag/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// PgvectorStore is the PostgreSQL vector backend. Chunks live in a single
// table with a JSONB metadata column and an HNSW cosine index.
type PgvectorStore struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewPgvectorStore bootstraps the schema and returns a store over the pool.
// The table name is derived from the collection name and must be a valid
// SQL identifier.
func NewPgvectorStore(ctx context.Context, pool *pgxpool.Pool, collection string, vectorSize int, logger *slog.Logger) (*PgvectorStore, error) {
	store := &PgvectorStore{
		pool:   pool,
		table:  collection,
		logger: logger,
	}
	if err := store.bootstrap(ctx, vectorSize); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PgvectorStore) bootstrap(ctx context.Context, vectorSize int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			document TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb
		)`, pgx.Identifier{s.table}.Sanitize(), vectorSize),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`,
			pgx.Identifier{s.table + "_embedding_idx"}.Sanitize(),
			pgx.Identifier{s.table}.Sanitize()),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}
	return nil
}

func (s *PgvectorStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.RetrievalResult, error) {
	query := fmt.Sprintf(`
		SELECT document, metadata, embedding <=> $1 AS distance
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var document string
		var meta map[string]string
		var distance float64
		if err := rows.Scan(&document, &meta, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, domain.RetrievalResult{
			Document: document,
			Metadata: domain.MetadataFromStrings(meta),
			Distance: float32(distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	s.logger.Debug("pgvector_queried",
		slog.String("table", s.table),
		slog.Int("k", k),
		slog.Int("results", len(results)))

	return results, nil
}

func (s *PgvectorStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, document, embedding, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document,
		    embedding = EXCLUDED.embedding,
		    metadata = EXCLUDED.metadata
	`, pgx.Identifier{s.table}.Sanitize())

	batch := &pgx.Batch{}
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(stmt, id, rec.Document, pgvector.NewVector(rec.Embedding), rec.Metadata.ToStrings())
	}

	br := s.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunks: %w", err)
		}
	}

	s.logger.Debug("pgvector_upserted",
		slog.String("table", s.table),
		slog.Int("count", len(records)))
	return nil
}

func (s *PgvectorStore) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, pgx.Identifier{s.table}.Sanitize())

	var count int
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Dump walks the table in ID order with keyset pagination and hands each
// batch to fn.
func (s *PgvectorStore) Dump(ctx context.Context, batchSize int, fn func([]domain.VectorRecord) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	query := fmt.Sprintf(`
		SELECT id, document, embedding, metadata
		FROM %s
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, pgx.Identifier{s.table}.Sanitize())

	lastID := uuid.Nil
	for {
		batch, err := s.dumpPage(ctx, query, lastID, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		lastID = uuid.MustParse(batch[len(batch)-1].ID)
	}
}

func (s *PgvectorStore) dumpPage(ctx context.Context, query string, lastID uuid.UUID, batchSize int) ([]domain.VectorRecord, error) {
	rows, err := s.pool.Query(ctx, query, lastID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk page: %w", err)
	}
	defer rows.Close()

	var batch []domain.VectorRecord
	for rows.Next() {
		var id uuid.UUID
		var document string
		var embedding pgvector.Vector
		var meta map[string]string
		if err := rows.Scan(&id, &document, &embedding, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		batch = append(batch, domain.VectorRecord{
			ID:        id.String(),
			Document:  document,
			Embedding: embedding.Slice(),
			Metadata:  domain.MetadataFromStrings(meta),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return batch, nil
}

var _ domain.VectorIndex = (*PgvectorStore)(nil)
var _ domain.VectorIndexExporter = (*PgvectorStore)(nil)
