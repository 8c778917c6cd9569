package retrieval

import (
	"context"
	"fmt"
	"sort"

	"petrorag/internal/domain"
)

// Rerank scores every candidate against the question with the cross-encoder
// in one batched call and returns the candidates sorted by score descending.
// The sort is stable so ties keep their post-dedup order. No score threshold
// is applied: low-relevance chunks fall out later at the token budget, not
// here.
func Rerank(
	ctx context.Context,
	question string,
	candidates []domain.RetrievalResult,
	reranker domain.Reranker,
) ([]domain.ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, cand := range candidates {
		documents[i] = cand.Document
	}

	scores, err := reranker.Score(ctx, question, documents)
	if err != nil {
		return nil, fmt.Errorf("failed to score candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(candidates), len(scores))
	}

	ranked := make([]domain.ScoredChunk, len(candidates))
	for i, cand := range candidates {
		ranked[i] = domain.ScoredChunk{
			Document: cand.Document,
			Metadata: cand.Metadata,
			Score:    scores[i],
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}
