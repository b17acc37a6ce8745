package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/standardbeagle/codescore/internal/types"
)

const securityPatternBackendName = "security-patterns"

// securityRule is one line-oriented security pattern
type securityRule struct {
	ID          string
	Pattern     *regexp.Regexp
	Exclude     string // substring that suppresses the match
	Severity    types.Severity
	Confidence  types.Confidence
	Description string
	Remediation string
}

// SecurityPatternBackend scans source lines for insecure constructs.
// It complements (not replaces) the delegated security tool: patterns
// here are cheap, always available and high-signal.
type SecurityPatternBackend struct {
	rules []securityRule
}

// NewSecurityPatternBackend creates the pattern-based security backend
func NewSecurityPatternBackend() *SecurityPatternBackend {
	return &SecurityPatternBackend{
		rules: []securityRule{
			{
				ID:          "CS101",
				Pattern:     regexp.MustCompile(`(?i)\b(password|passwd|secret|api_key|apikey|token)\s*=\s*["'][^"']+["']`),
				Severity:    types.SeverityHigh,
				Confidence:  types.ConfidenceMedium,
				Description: "Possible hardcoded credential",
				Remediation: "Load secrets from the environment or a secret manager",
			},
			{
				ID:          "CS102",
				Pattern:     regexp.MustCompile(`\beval\s*\(`),
				Severity:    types.SeverityHigh,
				Confidence:  types.ConfidenceHigh,
				Description: "Use of eval() on dynamic input",
				Remediation: "Replace eval with ast.literal_eval or explicit parsing",
			},
			{
				ID:          "CS103",
				Pattern:     regexp.MustCompile(`\bexec\s*\(`),
				Severity:    types.SeverityHigh,
				Confidence:  types.ConfidenceMedium,
				Description: "Use of exec() on dynamic input",
				Remediation: "Avoid exec; dispatch to known functions instead",
			},
			{
				ID:          "CS104",
				Pattern:     regexp.MustCompile(`subprocess\.[A-Za-z_]+\([^)]*shell\s*=\s*True`),
				Severity:    types.SeverityHigh,
				Confidence:  types.ConfidenceHigh,
				Description: "subprocess call with shell=True",
				Remediation: "Pass an argument list and drop shell=True",
			},
			{
				ID:          "CS105",
				Pattern:     regexp.MustCompile(`\bpickle\.loads?\s*\(`),
				Severity:    types.SeverityMedium,
				Confidence:  types.ConfidenceHigh,
				Description: "Deserialization of untrusted data with pickle",
				Remediation: "Use json or another safe format for untrusted input",
			},
			{
				ID:          "CS106",
				Pattern:     regexp.MustCompile(`\byaml\.load\s*\(`),
				Exclude:     "Loader",
				Severity:    types.SeverityMedium,
				Confidence:  types.ConfidenceMedium,
				Description: "yaml.load without an explicit safe Loader",
				Remediation: "Use yaml.safe_load or pass Loader=yaml.SafeLoader",
			},
			{
				ID:          "CS107",
				Pattern:     regexp.MustCompile(`\btempfile\.mktemp\s*\(`),
				Severity:    types.SeverityMedium,
				Confidence:  types.ConfidenceHigh,
				Description: "tempfile.mktemp is race-prone",
				Remediation: "Use tempfile.NamedTemporaryFile or mkstemp",
			},
			{
				ID:          "CS108",
				Pattern:     regexp.MustCompile(`\bhashlib\.(md5|sha1)\s*\(`),
				Severity:    types.SeverityLow,
				Confidence:  types.ConfidenceMedium,
				Description: "Weak hash algorithm",
				Remediation: "Use sha256 or stronger for security-sensitive hashing",
			},
			{
				ID:          "CS109",
				Pattern:     regexp.MustCompile(`(?i)(execute|executemany)\s*\(\s*["'][^"']*%s|(execute|executemany)\s*\(\s*f["']`),
				Severity:    types.SeverityHigh,
				Confidence:  types.ConfidenceLow,
				Description: "SQL statement built by string interpolation",
				Remediation: "Use parameterized queries",
			},
			{
				ID:          "CS110",
				Pattern:     regexp.MustCompile(`(?i)host\s*=\s*["']0\.0\.0\.0["']`),
				Severity:    types.SeverityMedium,
				Confidence:  types.ConfidenceMedium,
				Description: "Service bound to all interfaces",
				Remediation: "Bind to a specific interface unless external exposure is intended",
			},
		},
	}
}

func (b *SecurityPatternBackend) Name() string { return securityPatternBackendName }

func (b *SecurityPatternBackend) Description() string {
	return "Pattern-based detection of insecure Python constructs"
}

func (b *SecurityPatternBackend) Capabilities() []Capability {
	return []Capability{CapabilitySecurity}
}

func (b *SecurityPatternBackend) IsAvailable() bool { return true }

// Analyze matches every rule against every source line. Comment-only
// lines are skipped so commented-out code does not alert.
func (b *SecurityPatternBackend) Analyze(_ context.Context, files []types.SourceFile) (*types.AnalysisResult, error) {
	result := types.NewAnalysisResult()
	for _, file := range files {
		for lineIdx, line := range strings.Split(file.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			for _, rule := range b.rules {
				if rule.Exclude != "" && strings.Contains(line, rule.Exclude) {
					continue
				}
				if rule.Pattern.MatchString(line) {
					result.SecurityIssues = append(result.SecurityIssues, types.SecurityIssue{
						RuleID:      rule.ID,
						Severity:    rule.Severity,
						Confidence:  rule.Confidence,
						FilePath:    file.Path,
						Line:        lineIdx + 1,
						Description: rule.Description,
						Remediation: rule.Remediation,
					})
				}
			}
		}
	}
	return result, nil
}
