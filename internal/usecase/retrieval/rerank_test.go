package retrieval_test

import (
	"context"
	"testing"

	"petrorag/internal/domain"
	"petrorag/internal/usecase/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockReranker struct {
	mock.Mock
}

func (m *mockReranker) Score(ctx context.Context, query string, documents []string) ([]float32, error) {
	args := m.Called(ctx, query, documents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *mockReranker) ModelName() string {
	return "mock-cross-encoder"
}

func TestRerank_SortsByScoreDescending(t *testing.T) {
	ctx := context.Background()
	reranker := new(mockReranker)

	candidates := []domain.RetrievalResult{
		{Document: "A"}, {Document: "B"}, {Document: "C"},
	}
	reranker.On("Score", mock.Anything, "question", []string{"A", "B", "C"}).
		Return([]float32{0.2, 0.9, 0.5}, nil)

	ranked, err := retrieval.Rerank(ctx, "question", candidates, reranker)

	assert.NoError(t, err)
	docs := make([]string, len(ranked))
	for i, r := range ranked {
		docs[i] = r.Document
	}
	assert.Equal(t, []string{"B", "C", "A"}, docs)
	// One batched call, not one per pair.
	reranker.AssertNumberOfCalls(t, "Score", 1)
}

func TestRerank_StableOnTies(t *testing.T) {
	ctx := context.Background()
	reranker := new(mockReranker)

	candidates := []domain.RetrievalResult{
		{Document: "first"}, {Document: "second"}, {Document: "third"},
	}
	reranker.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return([]float32{0.5, 0.5, 0.5}, nil)

	ranked, err := retrieval.Rerank(ctx, "q", candidates, reranker)

	assert.NoError(t, err)
	assert.Equal(t, "first", ranked[0].Document)
	assert.Equal(t, "second", ranked[1].Document)
	assert.Equal(t, "third", ranked[2].Document)
}

func TestRerank_KeepsAllChunks(t *testing.T) {
	ctx := context.Background()
	reranker := new(mockReranker)

	candidates := []domain.RetrievalResult{
		{Document: "relevant"}, {Document: "barely relevant"},
	}
	reranker.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return([]float32{0.99, -4.2}, nil)

	ranked, err := retrieval.Rerank(ctx, "q", candidates, reranker)

	assert.NoError(t, err)
	// No threshold filtering; low scores survive to the budgeting stage.
	assert.Len(t, ranked, 2)
}

func TestRerank_CarriesMetadata(t *testing.T) {
	ctx := context.Background()
	reranker := new(mockReranker)

	candidates := []domain.RetrievalResult{
		{Document: "A", Metadata: domain.ChunkMetadata{FlowStation: "Awoba"}},
		{Document: "B", Metadata: domain.ChunkMetadata{FlowStation: "Ekulama"}},
	}
	reranker.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return([]float32{0.1, 0.8}, nil)

	ranked, err := retrieval.Rerank(ctx, "q", candidates, reranker)

	assert.NoError(t, err)
	assert.Equal(t, "Ekulama", ranked[0].Metadata.FlowStation)
	assert.Equal(t, "Awoba", ranked[1].Metadata.FlowStation)
}

func TestRerank_ScoreCountMismatch(t *testing.T) {
	ctx := context.Background()
	reranker := new(mockReranker)

	candidates := []domain.RetrievalResult{{Document: "A"}, {Document: "B"}}
	reranker.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return([]float32{0.5}, nil)

	_, err := retrieval.Rerank(ctx, "q", candidates, reranker)

	assert.Error(t, err)
}

func TestRerank_EmptyCandidates(t *testing.T) {
	ctx := context.Background()
	reranker := new(mockReranker)

	ranked, err := retrieval.Rerank(ctx, "q", nil, reranker)

	assert.NoError(t, err)
	assert.Empty(t, ranked)
	reranker.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything)
}
