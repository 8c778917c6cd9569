package domain

// TokenCounter reports the tokenized length of a text. It is used only for
// budgeting, never for semantics, and implementations must not fail: a
// counter that cannot load its model-specific encoding falls back to a
// general-purpose one at construction time.
type TokenCounter interface {
	Count(text string) int
}
