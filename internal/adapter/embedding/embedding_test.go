package embedding

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOllamaEmbedder_Encode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		assert.Equal(t, "all-minilm", req.Model)
		assert.Equal(t, []string{"first text", "second text"}, req.Input)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(server.URL, "all-minilm", 30, testLogger())

	vectors, err := embedder.Encode(context.Background(), []string{"first text", "second text"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
}

func TestOllamaEmbedder_Encode_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1}}})
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(server.URL, "all-minilm", 30, testLogger())

	vectors, err := embedder.Encode(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
	assert.Nil(t, vectors)
}

func TestOllamaEmbedder_Encode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(server.URL, "all-minilm", 30, testLogger())

	vectors, err := embedder.Encode(context.Background(), []string{"a"})
	assert.Error(t, err)
	assert.Nil(t, vectors)
}

func TestOllamaEmbedder_Version(t *testing.T) {
	embedder := NewOllamaEmbedder("http://localhost:11434", "all-minilm", 30, testLogger())

	assert.Equal(t, "all-minilm", embedder.Version())
}

// countingEncoder tracks how many texts reached the backing encoder.
type countingEncoder struct {
	encoded []string
}

func (c *countingEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	c.encoded = append(c.encoded, texts...)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text))}
	}
	return out, nil
}

func (c *countingEncoder) Version() string { return "counting-v1" }

func TestCachedEncoder_ServesRepeatsFromCache(t *testing.T) {
	inner := &countingEncoder{}
	cached, err := NewCachedEncoder(inner, 16, testLogger())
	require.NoError(t, err)

	first, err := cached.Encode(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	second, err := cached.Encode(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The second call must not reach the backing encoder.
	assert.Equal(t, []string{"alpha", "beta"}, inner.encoded)
}

func TestCachedEncoder_MixedHitsAndMisses(t *testing.T) {
	inner := &countingEncoder{}
	cached, err := NewCachedEncoder(inner, 16, testLogger())
	require.NoError(t, err)

	_, err = cached.Encode(context.Background(), []string{"alpha"})
	require.NoError(t, err)

	vectors, err := cached.Encode(context.Background(), []string{"alpha", "gamma"})
	require.NoError(t, err)

	assert.Len(t, vectors, 2)
	assert.Equal(t, []float32{5}, vectors[0])
	assert.Equal(t, []string{"alpha", "gamma"}, inner.encoded)
}

func TestCachedEncoder_Version(t *testing.T) {
	cached, err := NewCachedEncoder(&countingEncoder{}, 4, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "counting-v1", cached.Version())
}
