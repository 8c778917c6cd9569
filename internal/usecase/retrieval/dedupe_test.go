package retrieval_test

import (
	"testing"

	"petrorag/internal/domain"
	"petrorag/internal/usecase/retrieval"

	"github.com/stretchr/testify/assert"
)

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	input := []domain.RetrievalResult{
		{Document: "chunk-a", Metadata: domain.ChunkMetadata{Asset: "OML-24"}},
		{Document: "chunk-b"},
		{Document: "chunk-a", Metadata: domain.ChunkMetadata{Asset: "OML-58"}},
	}

	unique := retrieval.Dedupe(input)

	assert.Len(t, unique, 2)
	assert.Equal(t, "chunk-a", unique[0].Document)
	assert.Equal(t, "chunk-b", unique[1].Document)
	// The later duplicate's metadata is dropped with it.
	assert.Equal(t, "OML-24", unique[0].Metadata.Asset)
}

func TestDedupe_PreservesOrder(t *testing.T) {
	input := []domain.RetrievalResult{
		{Document: "c"}, {Document: "a"}, {Document: "b"}, {Document: "a"}, {Document: "c"},
	}

	unique := retrieval.Dedupe(input)

	docs := make([]string, len(unique))
	for i, u := range unique {
		docs[i] = u.Document
	}
	assert.Equal(t, []string{"c", "a", "b"}, docs)
}

func TestDedupe_OutputNeverLonger(t *testing.T) {
	input := []domain.RetrievalResult{{Document: "a"}, {Document: "a"}, {Document: "a"}}

	unique := retrieval.Dedupe(input)

	assert.LessOrEqual(t, len(unique), len(input))
	assert.Len(t, unique, 1)
}

func TestDedupe_DoesNotMutateInput(t *testing.T) {
	input := []domain.RetrievalResult{{Document: "a"}, {Document: "a"}, {Document: "b"}}

	_ = retrieval.Dedupe(input)

	assert.Len(t, input, 3)
	assert.Equal(t, "a", input[1].Document)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, retrieval.Dedupe(nil))
}
