package types

import "time"

// AnalysisResult accumulates the heterogeneous output of one or more
// backends. Sequences keep insertion order; Metrics is a last-write-wins
// mapping. The zero-value-equivalent from NewAnalysisResult is the
// identity element of Merge.
type AnalysisResult struct {
	Packages       []PackageFact      `json:"packages,omitempty"`
	Files          []SourceFile       `json:"files,omitempty"`
	Classes        []ClassFact        `json:"classes,omitempty"`
	Functions      []FunctionFact     `json:"functions,omitempty"`
	Variables      []VariableFact     `json:"variables,omitempty"`
	Imports        []ImportFact       `json:"imports,omitempty"`
	SecurityIssues []SecurityIssue    `json:"security_issues,omitempty"`
	DeadCode       []DeadCodeIssue    `json:"dead_code,omitempty"`
	Duplicates     []DuplicateBlock   `json:"duplicates,omitempty"`
	Errors         []AnalysisError    `json:"errors,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// NewAnalysisResult creates an empty result
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Metrics: make(map[string]float64),
	}
}

// Merge appends other's sequences to r and merges other's metrics into
// r's mapping, later key winning. Existing entries are never dropped or
// reordered, which makes Merge associative with NewAnalysisResult as
// identity.
func (r *AnalysisResult) Merge(other *AnalysisResult) {
	if other == nil {
		return
	}
	r.Packages = append(r.Packages, other.Packages...)
	r.Files = append(r.Files, other.Files...)
	r.Classes = append(r.Classes, other.Classes...)
	r.Functions = append(r.Functions, other.Functions...)
	r.Variables = append(r.Variables, other.Variables...)
	r.Imports = append(r.Imports, other.Imports...)
	r.SecurityIssues = append(r.SecurityIssues, other.SecurityIssues...)
	r.DeadCode = append(r.DeadCode, other.DeadCode...)
	r.Duplicates = append(r.Duplicates, other.Duplicates...)
	r.Errors = append(r.Errors, other.Errors...)
	if len(other.Metrics) > 0 {
		if r.Metrics == nil {
			r.Metrics = make(map[string]float64, len(other.Metrics))
		}
		for k, v := range other.Metrics {
			r.Metrics[k] = v
		}
	}
}

// IssueCount returns the total number of findings across issue sequences
func (r *AnalysisResult) IssueCount() int {
	return len(r.SecurityIssues) + len(r.DeadCode) + len(r.Duplicates)
}

// BackendStatus is the terminal status of one backend within a run
type BackendStatus string

const (
	StatusSuccess BackendStatus = "success"
	StatusPartial BackendStatus = "partial"
	StatusFailed  BackendStatus = "failed"
	StatusSkipped BackendStatus = "skipped"
)

// BackendRunStatistics records one backend's execution within a run.
// Write-once: built by the orchestrator after the backend finishes.
type BackendRunStatistics struct {
	Backend          string           `json:"backend"`
	Status           BackendStatus    `json:"status"`
	Duration         time.Duration    `json:"duration_ns"`
	FilesProcessed   int              `json:"files_processed"`
	IssuesFound      int              `json:"issues_found"`
	Error            string           `json:"error,omitempty"`
	IssuesBySeverity map[Severity]int `json:"issues_by_severity,omitempty"`
	IssuesByCategory map[string]int   `json:"issues_by_category,omitempty"`
}

// QualityMetrics is the scored summary of one run. Component scores are
// clamped to [0,100].
type QualityMetrics struct {
	ComplexityScore      float64 `json:"complexity_score"`
	SecurityScore        float64 `json:"security_score"`
	MaintainabilityScore float64 `json:"maintainability_score"`
	DocumentationScore   float64 `json:"documentation_score"`
	DuplicationScore     float64 `json:"duplication_score"`
	OverallScore         float64 `json:"overall_score"`
	Grade                string  `json:"grade"`

	TotalFiles     int     `json:"total_files"`
	TotalLines     int     `json:"total_lines"`
	TotalFunctions int     `json:"total_functions"`
	TotalClasses   int     `json:"total_classes"`
	AvgComplexity  float64 `json:"avg_complexity"`
	MaxComplexity  int     `json:"max_complexity"`

	SecurityIssueCount  int `json:"security_issue_count"`
	DeadCodeCount       int `json:"dead_code_count"`
	DuplicateBlockCount int `json:"duplicate_block_count"`
	FilesOverThreshold  int `json:"files_over_complexity_threshold"`

	TechnicalDebtHours float64 `json:"technical_debt_hours"`
}

// ClampScore bounds a component score to [0,100]
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// GradeForScore maps an overall score to its letter grade
func GradeForScore(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "A-"
	case score >= 75:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 65:
		return "B-"
	case score >= 60:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 50:
		return "C-"
	case score >= 45:
		return "D+"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
