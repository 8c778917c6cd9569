package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"petrorag/internal/domain"
)

// MaxQueriesPerTurn caps how many expanded queries hit the index in one
// turn, bounding index-call cost and keeping the assembled context focused.
const MaxQueriesPerTurn = 3

// MultiQueryRetrieve runs each query through the vector index and merges the
// per-query candidate lists in query order. At most MaxQueriesPerTurn
// queries are consumed; the global topK budget is split evenly across them
// (floor division, never below one candidate per query). Candidates keep the
// index's own relevance order within each query; reranking happens later.
func MultiQueryRetrieve(
	ctx context.Context,
	queries []string,
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	topK int,
	logger *slog.Logger,
) ([]domain.RetrievalResult, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries to retrieve")
	}
	if len(queries) > MaxQueriesPerTurn {
		queries = queries[:MaxQueriesPerTurn]
	}

	perQueryK := topK / len(queries)
	if perQueryK < 1 {
		perQueryK = 1
	}

	var merged []domain.RetrievalResult
	for _, query := range queries {
		embeddings, err := encoder.Encode(ctx, []string{query})
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		if len(embeddings) == 0 {
			return nil, fmt.Errorf("no embedding returned for query")
		}

		results, err := index.Query(ctx, embeddings[0], perQueryK)
		if err != nil {
			return nil, fmt.Errorf("failed to query index: %w", err)
		}

		logger.Debug("index_query_completed",
			slog.String("query", query),
			slog.Int("requested", perQueryK),
			slog.Int("returned", len(results)))

		merged = append(merged, results...)
	}

	return merged, nil
}
