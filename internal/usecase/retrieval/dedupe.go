package retrieval

import "petrorag/internal/domain"

// Dedupe collapses candidates with identical document text, keeping the
// first occurrence and its metadata. Order of survivors is the order of
// their first appearance; the input slice is left untouched.
//
// Chunk identity is the exact text value. When two index entries share text
// but differ in metadata, the later metadata is dropped with its chunk.
func Dedupe(results []domain.RetrievalResult) []domain.RetrievalResult {
	seen := make(map[string]bool, len(results))
	unique := make([]domain.RetrievalResult, 0, len(results))
	for _, res := range results {
		if seen[res.Document] {
			continue
		}
		seen[res.Document] = true
		unique = append(unique, res)
	}
	return unique
}
