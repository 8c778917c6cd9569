package tokenizer

import (
	"fmt"

	"petrorag/internal/domain"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenCounter counts tokens with the tokenizer of the given model. When
// the model is unknown it falls back to the cl100k_base encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func New(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer: %w", err)
		}
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

var _ domain.TokenCounter = (*TiktokenCounter)(nil)
