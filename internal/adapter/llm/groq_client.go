package llm

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

// DefaultGroqBaseURL is the OpenAI-compatible API root of the Groq cloud.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements domain.LLMClient against the Groq chat completions
// endpoint. Responses are never streamed.
type GroqClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

func NewGroqClient(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *GroqClient {
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	return &GroqClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float32       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	TopP                float32       `json:"top_p"`
	Stream              bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

func (c *GroqClient) Complete(ctx context.Context, systemPrompt, userPrompt string, params domain.SamplingParams) (*domain.LLMResponse, error) {
	start := time.Now()

	reqBody := chatCompletionRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:         params.Temperature,
		MaxCompletionTokens: params.MaxTokens,
		TopP:                params.TopP,
		Stream:              false,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		c.logger.Warn("llm_request_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to call llm endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("llm_request_failed",
			slog.Int("status_code", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("llm endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var respBody chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(respBody.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	choice := respBody.Choices[0]
	c.logger.Debug("llm_completion_received",
		slog.String("model", c.Model),
		slog.String("finish_reason", choice.FinishReason),
		slog.Duration("elapsed", time.Since(start)))

	return &domain.LLMResponse{
		Text: choice.Message.Content,
		Done: choice.FinishReason == "stop",
	}, nil
}

func (c *GroqClient) Version() string {
	return c.Model
}

var _ domain.LLMClient = (*GroqClient)(nil)
