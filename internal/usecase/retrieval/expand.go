package retrieval

import (
	"regexp"
	"strings"
)

// wellIDPattern matches well identifiers such as AKOS012T:L0120
// (field code, well number, optional suffix, colon, string + completion).
var wellIDPattern = regexp.MustCompile(`[A-Z]{4}\d{3}[A-Z]?:[A-Z]\d{3,4}[A-Z]?`)

// canonicalFlowStation is the spelling the index stores.
const canonicalFlowStation = "flowStation"

var flowStationVariants = []struct {
	keyword string
	pattern *regexp.Regexp
}{
	{"flowstation", regexp.MustCompile(`(?i)flowstation`)},
	{"fs", regexp.MustCompile(`(?i)fs`)},
	{"flow station", regexp.MustCompile(`(?i)flow station`)},
}

// datePatterns are tried in order; only the first pattern with a match
// contributes a synthetic date query.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`(?i)(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
}

// ExpandQuery derives a set of retrieval queries from one user question.
// The original question is always the first element; synthetic queries
// follow in first-seen order with duplicates removed. The function is pure
// and deterministic.
func ExpandQuery(question string) []string {
	queries := []string{question}

	for _, well := range wellIDPattern.FindAllString(strings.ToUpper(question), -1) {
		queries = append(queries, "well "+well, "production "+well)
	}

	lower := strings.ToLower(question)
	for _, variant := range flowStationVariants {
		if strings.Contains(lower, variant.keyword) {
			queries = append(queries, variant.pattern.ReplaceAllLiteralString(question, canonicalFlowStation))
		}
	}

	for _, pattern := range datePatterns {
		if match := pattern.FindString(question); match != "" {
			queries = append(queries, "date "+match+" production")
			break
		}
	}

	return dedupeStrings(queries)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}
