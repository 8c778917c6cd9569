package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"petrorag/internal/domain"
)

// OllamaEmbedder encodes text through the Ollama embed endpoint. The model is
// expected to be a sentence embedding model such as all-minilm.
type OllamaEmbedder struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

func NewOllamaEmbedder(baseURL, model string, timeoutSeconds int, logger *slog.Logger) *OllamaEmbedder {
	timeout := 30 * time.Second
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &OllamaEmbedder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()

	reqBody := embedRequest{
		Model: e.Model,
		Input: texts,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		e.logger.Error("embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call embedding service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("embedding service returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(respBody.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(respBody.Embeddings))
	}

	e.logger.Debug("embed_completed",
		slog.Int("text_count", len(texts)),
		slog.String("model", e.Model),
		slog.Duration("elapsed", time.Since(start)))

	return respBody.Embeddings, nil
}

func (e *OllamaEmbedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*OllamaEmbedder)(nil)
