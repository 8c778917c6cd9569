package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"petrorag/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// FeedbackRepository persists answer feedback in a local SQLite database.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository opens (and bootstraps) the feedback database at path.
// Use ":memory:" for an ephemeral store.
func NewFeedbackRepository(path string) (*FeedbackRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback db: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS feedback (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			helpful INTEGER NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to bootstrap feedback schema: %w", err)
	}

	return &FeedbackRepository{db: db}, nil
}

func (r *FeedbackRepository) Save(ctx context.Context, fb *domain.Feedback) error {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (question, answer, helpful, comment, created_at) VALUES (?, ?, ?, ?, ?)`,
		fb.Question, fb.Answer, fb.Helpful, fb.Comment, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read feedback id: %w", err)
	}
	fb.ID = id
	return nil
}

func (r *FeedbackRepository) ListRecent(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, answer, helpful, comment, created_at FROM feedback ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.Question, &fb.Answer, &fb.Helpful, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func (r *FeedbackRepository) Close() error {
	return r.db.Close()
}

var _ domain.FeedbackRepository = (*FeedbackRepository)(nil)
