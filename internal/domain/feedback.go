package domain

import (
	"context"
	"time"
)

// Feedback is one user judgement on an answer turn.
type Feedback struct {
	ID        int64
	Question  string
	Answer    string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}

// FeedbackRepository persists feedback records.
type FeedbackRepository interface {
	Save(ctx context.Context, fb *Feedback) error
	ListRecent(ctx context.Context, limit int) ([]Feedback, error)
}
