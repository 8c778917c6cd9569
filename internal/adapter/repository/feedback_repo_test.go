package repository

import (
	"context"
	"testing"

	"petrorag/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepository_SaveAndListRecent(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFeedbackRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	first := &domain.Feedback{
		Question: "how much oil did AWOB001:L004 produce",
		Answer:   "412.5 barrels",
		Helpful:  true,
	}
	require.NoError(t, repo.Save(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &domain.Feedback{
		Question: "gas totals for Ekulama",
		Answer:   "no data found",
		Helpful:  false,
		Comment:  "missing October records",
	}
	require.NoError(t, repo.Save(ctx, second))

	items, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Most recent first.
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, "missing October records", items[0].Comment)
	assert.False(t, items[0].Helpful)
	assert.Equal(t, first.ID, items[1].ID)
	assert.True(t, items[1].Helpful)
}

func TestFeedbackRepository_ListRecentLimit(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFeedbackRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, &domain.Feedback{Question: "q", Answer: "a", Helpful: true}))
	}

	items, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestFeedbackRepository_ListRecentEmpty(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFeedbackRepository(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	items, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
