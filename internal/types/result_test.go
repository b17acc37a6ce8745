package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(tag string, metric float64) *AnalysisResult {
	r := NewAnalysisResult()
	r.Functions = append(r.Functions, FunctionFact{Name: tag + "_fn", Complexity: 1, Tier: TierLow})
	r.SecurityIssues = append(r.SecurityIssues, SecurityIssue{RuleID: tag, Severity: SeverityLow})
	r.Errors = append(r.Errors, AnalysisError{Backend: tag, Message: tag + " error"})
	r.Metrics["shared"] = metric
	r.Metrics[tag] = metric
	return r
}

func TestMergeAppendsWithoutDroppingOrReordering(t *testing.T) {
	a := sampleResult("a", 1)
	b := sampleResult("b", 2)

	a.Merge(b)

	require.Len(t, a.Functions, 2)
	assert.Equal(t, "a_fn", a.Functions[0].Name)
	assert.Equal(t, "b_fn", a.Functions[1].Name)
	require.Len(t, a.SecurityIssues, 2)
	assert.Equal(t, "a", a.SecurityIssues[0].RuleID)
	assert.Equal(t, "b", a.SecurityIssues[1].RuleID)

	// later key wins on the metrics map
	assert.Equal(t, 2.0, a.Metrics["shared"])
	assert.Equal(t, 1.0, a.Metrics["a"])
	assert.Equal(t, 2.0, a.Metrics["b"])
}

func TestMergeIsAssociative(t *testing.T) {
	left := sampleResult("x", 1)
	left.Merge(sampleResult("y", 2))
	left.Merge(sampleResult("z", 3))

	mid := sampleResult("y", 2)
	mid.Merge(sampleResult("z", 3))
	right := sampleResult("x", 1)
	right.Merge(mid)

	assert.Equal(t, left.Functions, right.Functions)
	assert.Equal(t, left.SecurityIssues, right.SecurityIssues)
	assert.Equal(t, left.Errors, right.Errors)
	assert.Equal(t, left.Metrics, right.Metrics)
}

func TestMergeEmptyIsIdentity(t *testing.T) {
	r := sampleResult("a", 1)
	want := sampleResult("a", 1)

	r.Merge(NewAnalysisResult())
	assert.Equal(t, want.Functions, r.Functions)
	assert.Equal(t, want.Metrics, r.Metrics)

	empty := NewAnalysisResult()
	empty.Merge(want)
	assert.Equal(t, want.Functions, empty.Functions)
	assert.Equal(t, want.Metrics, empty.Metrics)

	// nil is tolerated too
	r.Merge(nil)
	assert.Equal(t, want.Functions, r.Functions)
}

func TestTierForComplexityBoundaries(t *testing.T) {
	tests := []struct {
		complexity int
		want       ComplexityTier
	}{
		{1, TierLow},
		{5, TierLow},
		{6, TierMedium},
		{10, TierMedium},
		{11, TierHigh},
		{20, TierHigh},
		{21, TierVeryHigh},
		{100, TierVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierForComplexity(tt.complexity), "complexity %d", tt.complexity)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-250))
	assert.Equal(t, 0.0, ClampScore(0))
	assert.Equal(t, 42.5, ClampScore(42.5))
	assert.Equal(t, 100.0, ClampScore(100))
	assert.Equal(t, 100.0, ClampScore(1e9))
}

func TestGradeForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "A+"}, {90, "A+"},
		{87, "A"}, {85, "A"},
		{82, "A-"}, {80, "A-"},
		{75, "B+"}, {70, "B"}, {65, "B-"},
		{60, "C+"}, {55, "C"}, {50, "C-"},
		{45, "D+"}, {40, "D"},
		{39.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeForScore(tt.score), "score %v", tt.score)
	}
}
