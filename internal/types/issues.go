package types

// Severity grades how serious a finding is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Confidence grades how certain the reporting backend is about a finding
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SecurityIssue is one security finding in a source file
type SecurityIssue struct {
	RuleID      string     `json:"rule_id"`
	Severity    Severity   `json:"severity"`
	Confidence  Confidence `json:"confidence"`
	FilePath    string     `json:"file_path"`
	Line        int        `json:"line"`
	Description string     `json:"description"`
	Remediation string     `json:"remediation,omitempty"`
}

// DeadCodeKind categorizes what kind of unused code was found
type DeadCodeKind string

const (
	DeadCodeFunction    DeadCodeKind = "function"
	DeadCodeClass       DeadCodeKind = "class"
	DeadCodeVariable    DeadCodeKind = "variable"
	DeadCodeImport      DeadCodeKind = "import"
	DeadCodeUnreachable DeadCodeKind = "unreachable"
)

// DeadCodeIssue is one unused-code finding.
// Confidence is normalized to [0,1]; RemovableLines estimates the
// size of the code that could be deleted.
type DeadCodeIssue struct {
	Kind           DeadCodeKind `json:"kind"`
	Name           string       `json:"name"`
	FilePath       string       `json:"file_path"`
	Line           int          `json:"line"`
	Confidence     float64      `json:"confidence"`
	RemovableLines int          `json:"removable_lines"`
}

// DuplicateLocation is one occurrence of a duplicated block
type DuplicateLocation struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// DuplicateBlock is one detected duplication across two or more locations.
// Similarity is the matching-blocks ratio in [0,1].
type DuplicateBlock struct {
	ID         string              `json:"id"`
	LineCount  int                 `json:"line_count"`
	Similarity float64             `json:"similarity"`
	Preview    string              `json:"preview,omitempty"`
	Locations  []DuplicateLocation `json:"locations"`
}

// AnalysisError records a non-fatal failure captured during analysis.
// File-level and backend-level failures become error entries so a
// partial report is always producible.
type AnalysisError struct {
	Backend  string `json:"backend,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message"`
}
