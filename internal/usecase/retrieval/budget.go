package retrieval

import "petrorag/internal/domain"

// BudgetContext greedily selects ranked chunks until the token budget is
// exhausted, returning the selection in rank order and the total token
// count. Token costs are computed on the raw document text; metadata
// annotation happens after budgeting and is not charged.
//
// Selection stops at the first chunk that would exceed the budget. There is
// deliberately no look-ahead: a smaller chunk further down the ranking never
// displaces a more relevant one.
func BudgetContext(ranked []domain.ScoredChunk, counter domain.TokenCounter, maxTokens int) ([]domain.ScoredChunk, int) {
	var selected []domain.ScoredChunk
	total := 0
	for _, chunk := range ranked {
		cost := counter.Count(chunk.Document)
		if total+cost > maxTokens {
			break
		}
		selected = append(selected, chunk)
		total += cost
	}
	return selected, total
}
