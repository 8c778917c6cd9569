package retrieval_test

import (
	"testing"

	"petrorag/internal/usecase/retrieval"

	"github.com/stretchr/testify/assert"
)

func TestExpandQuery_OriginalAlwaysFirst(t *testing.T) {
	queries := retrieval.ExpandQuery("how much gas was produced yesterday")

	assert.Equal(t, []string{"how much gas was produced yesterday"}, queries)
}

func TestExpandQuery_WellIdentifiers(t *testing.T) {
	question := "oil production for AKOS012T:L0120 last week"

	queries := retrieval.ExpandQuery(question)

	assert.Contains(t, queries, question)
	assert.Contains(t, queries, "well AKOS012T:L0120")
	assert.Contains(t, queries, "production AKOS012T:L0120")
	assert.Equal(t, question, queries[0])
}

func TestExpandQuery_MultipleWellIdentifiers(t *testing.T) {
	queries := retrieval.ExpandQuery("compare AKOS012T:L0120 and EKUL034:S045B")

	assert.Contains(t, queries, "well AKOS012T:L0120")
	assert.Contains(t, queries, "production AKOS012T:L0120")
	assert.Contains(t, queries, "well EKUL034:S045B")
	assert.Contains(t, queries, "production EKUL034:S045B")
}

func TestExpandQuery_UppercasesBeforeMatching(t *testing.T) {
	queries := retrieval.ExpandQuery("what did akos012t:l0120 produce")

	assert.Contains(t, queries, "well AKOS012T:L0120")
}

func TestExpandQuery_FlowstationCanonicalization(t *testing.T) {
	queries := retrieval.ExpandQuery("oil production for Awoba flowstation")

	assert.Contains(t, queries, "oil production for Awoba flowStation")
}

func TestExpandQuery_FlowstationSpacedVariant(t *testing.T) {
	queries := retrieval.ExpandQuery("Awoba flow station totals")

	assert.Contains(t, queries, "Awoba flowStation totals")
}

func TestExpandQuery_FlowstationCaseInsensitive(t *testing.T) {
	queries := retrieval.ExpandQuery("Awoba Flowstation totals")

	assert.Contains(t, queries, "Awoba flowStation totals")
}

func TestExpandQuery_DateISO(t *testing.T) {
	queries := retrieval.ExpandQuery("production on 2025-10-14 please")

	assert.Contains(t, queries, "date 2025-10-14 production")
}

func TestExpandQuery_DateNumeric(t *testing.T) {
	queries := retrieval.ExpandQuery("production on 14/10/2025 please")

	assert.Contains(t, queries, "date 14/10/2025 production")
}

func TestExpandQuery_DateMonthName(t *testing.T) {
	queries := retrieval.ExpandQuery("what happened on October 14, 2025")

	assert.Contains(t, queries, "date October 14, 2025 production")
}

func TestExpandQuery_FirstDatePatternOnly(t *testing.T) {
	// ISO pattern matches first; the month-name date must not contribute.
	queries := retrieval.ExpandQuery("compare 2025-10-14 with October 15, 2025")

	assert.Contains(t, queries, "date 2025-10-14 production")
	assert.NotContains(t, queries, "date October 15, 2025 production")
}

func TestExpandQuery_Deduplicates(t *testing.T) {
	queries := retrieval.ExpandQuery("well AKOS012T:L0120")

	counts := make(map[string]int)
	for _, q := range queries {
		counts[q]++
	}
	for q, n := range counts {
		assert.Equal(t, 1, n, "query %q appears more than once", q)
	}
	// "well AKOS012T:L0120" is both the original question and a synthetic
	// query; it must survive exactly once, in first position.
	assert.Equal(t, "well AKOS012T:L0120", queries[0])
}

func TestExpandQuery_Deterministic(t *testing.T) {
	question := "oil production for Awoba flowstation on 2025-10-14, well AKOS012T:L0120"

	first := retrieval.ExpandQuery(question)
	second := retrieval.ExpandQuery(question)

	assert.Equal(t, first, second)
}
