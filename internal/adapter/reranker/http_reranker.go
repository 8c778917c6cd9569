package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"petrorag/internal/domain"
)

// rerankRequest is the request payload for the rerank endpoint.
type rerankRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
	Model      string   `json:"model,omitempty"`
}

// rerankResult is a single scored candidate in the rerank response.
type rerankResult struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
	Model   string         `json:"model"`
}

// HTTPReranker implements domain.Reranker against a cross-encoder scoring
// service. The service may return results in any order; scores are mapped
// back to input positions by index.
type HTTPReranker struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

// NewHTTPReranker constructs a reranker client. If client is nil, a default
// http.Client is created with the given timeout.
func NewHTTPReranker(baseURL, model string, timeout time.Duration, logger *slog.Logger, client ...*http.Client) *HTTPReranker {
	var c *http.Client
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	} else {
		c = &http.Client{Timeout: timeout}
	}
	return &HTTPReranker{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  c,
		logger:  logger,
	}
}

// Score returns one relevance score per document, aligned with the input order.
func (c *HTTPReranker) Score(ctx context.Context, query string, documents []string) ([]float32, error) {
	if len(documents) == 0 {
		return []float32{}, nil
	}

	startTime := time.Now()

	reqBody := rerankRequest{
		Query:      query,
		Candidates: documents,
		Model:      c.Model,
	}
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/rerank", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		c.logger.Warn("reranking_failed",
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))
		return nil, fmt.Errorf("failed to call rerank endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("reranking_failed",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", truncateString(string(body), 500)),
			slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))
		return nil, fmt.Errorf("rerank endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}
	if len(rerankResp.Results) != len(documents) {
		return nil, fmt.Errorf("expected %d rerank results, got %d", len(documents), len(rerankResp.Results))
	}

	scores := make([]float32, len(documents))
	for _, r := range rerankResp.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("invalid result index %d for %d candidates", r.Index, len(documents))
		}
		scores[r.Index] = r.Score
	}

	c.logger.Debug("reranking_completed",
		slog.Int("candidate_count", len(documents)),
		slog.String("model", rerankResp.Model),
		slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))

	return scores, nil
}

// ModelName returns the model identifier for logging/debugging.
func (c *HTTPReranker) ModelName() string {
	return c.Model
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

var _ domain.Reranker = (*HTTPReranker)(nil)
