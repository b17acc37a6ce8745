// Package scoring converts aggregate analysis counts into a 0-100
// quality score with a letter grade and a technical debt estimate.
package scoring

import (
	"math"

	"github.com/standardbeagle/codescore/internal/config"
	"github.com/standardbeagle/codescore/internal/types"
)

// Component weights for the overall score
const (
	weightComplexity      = 0.25
	weightSecurity        = 0.25
	weightMaintainability = 0.20
	weightDuplication     = 0.15
	weightDocumentation   = 0.15
)

// TODO: replace with docstring coverage computed from function and
// class facts; the facts already carry HasDocstring.
const documentationPlaceholder = 70.0

// Debt hour estimates per finding kind
const (
	debtPerSecurityIssue   = 0.5
	debtPerDeadCodeIssue   = 0.25
	debtPerDuplicateBlock  = 1.0
	debtPerComplexFunction = 0.5
)

// Scorer derives QualityMetrics from a merged analysis result
type Scorer struct {
	complexityThreshold int
}

// NewScorer creates a scorer using the configured complexity threshold
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{complexityThreshold: cfg.Analysis.ComplexityThreshold}
}

// Score computes the per-run quality metrics. All component scores
// are clamped to [0,100]; the result is deterministic for a given
// merged analysis result.
func (s *Scorer) Score(result *types.AnalysisResult, totalFiles int) *types.QualityMetrics {
	m := &types.QualityMetrics{
		TotalFiles:     totalFiles,
		TotalFunctions: len(result.Functions),
		TotalClasses:   len(result.Classes),
	}
	for _, file := range result.Files {
		m.TotalLines += file.TotalLines()
	}

	totalComplexity := 0
	functionsOverThreshold := 0
	fileComplexity := make(map[string][2]int) // sum, count per file
	for _, fn := range result.Functions {
		totalComplexity += fn.Complexity
		if fn.Complexity > m.MaxComplexity {
			m.MaxComplexity = fn.Complexity
		}
		if fn.Complexity > s.complexityThreshold {
			functionsOverThreshold++
		}
		agg := fileComplexity[fn.FilePath]
		fileComplexity[fn.FilePath] = [2]int{agg[0] + fn.Complexity, agg[1] + 1}
	}
	if len(result.Functions) > 0 {
		m.AvgComplexity = float64(totalComplexity) / float64(len(result.Functions))
	}
	for _, agg := range fileComplexity {
		if float64(agg[0])/float64(agg[1]) > float64(s.complexityThreshold) {
			m.FilesOverThreshold++
		}
	}

	m.SecurityIssueCount = len(result.SecurityIssues)
	m.DeadCodeCount = len(result.DeadCode)
	m.DuplicateBlockCount = len(result.Duplicates)

	m.ComplexityScore = types.ClampScore(100 - 10*m.AvgComplexity)
	m.SecurityScore = types.ClampScore(100 - 5*float64(m.SecurityIssueCount))
	m.MaintainabilityScore = types.ClampScore(100 - 10*float64(m.FilesOverThreshold))
	m.DuplicationScore = types.ClampScore(100 - 10*float64(m.DuplicateBlockCount))
	m.DocumentationScore = documentationPlaceholder

	m.OverallScore = types.ClampScore(
		weightComplexity*m.ComplexityScore +
			weightSecurity*m.SecurityScore +
			weightMaintainability*m.MaintainabilityScore +
			weightDuplication*m.DuplicationScore +
			weightDocumentation*m.DocumentationScore)
	m.Grade = types.GradeForScore(m.OverallScore)

	debt := debtPerSecurityIssue*float64(m.SecurityIssueCount) +
		debtPerDeadCodeIssue*float64(m.DeadCodeCount) +
		debtPerDuplicateBlock*float64(m.DuplicateBlockCount) +
		debtPerComplexFunction*float64(functionsOverThreshold)
	m.TechnicalDebtHours = math.Round(debt*10) / 10

	return m
}
