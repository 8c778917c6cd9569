package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"petrorag/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend identifiers accepted by the factory.
const (
	BackendEmbedded = "embedded"
	BackendQdrant   = "qdrant"
	BackendPgvector = "pgvector"
	BackendAuto     = "auto"
)

// Options configures backend selection. Only the fields of the selected
// backend need to be set; with BackendAuto the first configured backend in
// the order embedded, qdrant, pgvector wins.
type Options struct {
	Backend    string
	Collection string
	VectorSize int

	// Embedded backend.
	DataPath string

	// Qdrant backend.
	QdrantURL string

	// Pgvector backend.
	PostgresPool *pgxpool.Pool

	Logger *slog.Logger
}

// New builds the vector index for the configured backend.
func New(ctx context.Context, opts Options) (domain.VectorIndex, error) {
	switch opts.Backend {
	case BackendEmbedded:
		return NewChromemStore(opts.DataPath, opts.Collection, opts.Logger)
	case BackendQdrant:
		return NewQdrantStore(ctx, opts.QdrantURL, opts.Collection, opts.VectorSize, opts.Logger)
	case BackendPgvector:
		if opts.PostgresPool == nil {
			return nil, fmt.Errorf("pgvector backend requires a postgres pool")
		}
		return NewPgvectorStore(ctx, opts.PostgresPool, opts.Collection, opts.VectorSize, opts.Logger)
	case BackendAuto, "":
		return newAuto(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown vector backend: %s", opts.Backend)
	}
}

func newAuto(ctx context.Context, opts Options) (domain.VectorIndex, error) {
	if opts.DataPath != "" {
		store, err := NewChromemStore(opts.DataPath, opts.Collection, opts.Logger)
		if err == nil {
			opts.Logger.Info("vector_backend_selected", slog.String("backend", BackendEmbedded))
			return store, nil
		}
		opts.Logger.Warn("embedded_backend_unavailable", slog.String("error", err.Error()))
	}
	if opts.QdrantURL != "" {
		store, err := NewQdrantStore(ctx, opts.QdrantURL, opts.Collection, opts.VectorSize, opts.Logger)
		if err == nil {
			opts.Logger.Info("vector_backend_selected", slog.String("backend", BackendQdrant))
			return store, nil
		}
		opts.Logger.Warn("qdrant_backend_unavailable", slog.String("error", err.Error()))
	}
	if opts.PostgresPool != nil {
		store, err := NewPgvectorStore(ctx, opts.PostgresPool, opts.Collection, opts.VectorSize, opts.Logger)
		if err == nil {
			opts.Logger.Info("vector_backend_selected", slog.String("backend", BackendPgvector))
			return store, nil
		}
		opts.Logger.Warn("pgvector_backend_unavailable", slog.String("error", err.Error()))
	}
	return nil, fmt.Errorf("no vector backend available")
}
