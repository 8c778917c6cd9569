package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petrorag/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestGroqClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "answer the question", req.Messages[1].Content)
		assert.Equal(t, float32(0.3), req.Temperature)
		assert.Equal(t, float32(0.9), req.TopP)
		assert.Equal(t, 1024, req.MaxCompletionTokens)
		assert.False(t, req.Stream)

		resp := chatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message      chatMessage `json:"message"`
			FinishReason string      `json:"finish_reason"`
		}{
			Message:      chatMessage{Role: "assistant", Content: "412.5 barrels"},
			FinishReason: "stop",
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewGroqClient(server.URL, "test-key", "llama-3.3-70b-versatile", 30*time.Second, testLogger())

	resp, err := client.Complete(context.Background(), "you are an assistant", "answer the question", domain.SamplingParams{
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   1024,
	})
	require.NoError(t, err)

	assert.Equal(t, "412.5 barrels", resp.Text)
	assert.True(t, resp.Done)
}

func TestGroqClient_Complete_LengthFinishIsNotDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"truncated..."},"finish_reason":"length"}]}`))
	}))
	defer server.Close()

	client := NewGroqClient(server.URL, "k", "m", 30*time.Second, testLogger())

	resp, err := client.Complete(context.Background(), "s", "u", domain.SamplingParams{MaxTokens: 8})
	require.NoError(t, err)

	assert.Equal(t, "truncated...", resp.Text)
	assert.False(t, resp.Done)
}

func TestGroqClient_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	client := NewGroqClient(server.URL, "k", "m", 30*time.Second, testLogger())

	resp, err := client.Complete(context.Background(), "s", "u", domain.SamplingParams{})
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "429")
}

func TestGroqClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewGroqClient(server.URL, "k", "m", 30*time.Second, testLogger())

	resp, err := client.Complete(context.Background(), "s", "u", domain.SamplingParams{})
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestGroqClient_DefaultBaseURL(t *testing.T) {
	client := NewGroqClient("", "k", "m", 30*time.Second, testLogger())

	assert.Equal(t, DefaultGroqBaseURL, client.BaseURL)
}
