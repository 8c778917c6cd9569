package domain

import "context"

// SamplingParams are the generation knobs passed on every completion
// request. The pipeline uses one fixed set per process.
type SamplingParams struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// LLMResponse carries the LLM output and whether the generation finished.
type LLMResponse struct {
	Text string
	Done bool
}

// LLMClient defines the capability to send a system/user prompt pair to an
// LLM backend and receive a textual completion. Streaming is intentionally
// absent: answers are synthesized in one shot.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, params SamplingParams) (*LLMResponse, error)
	Version() string
}
