package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/standardbeagle/codescore/internal/config"
	cserrors "github.com/standardbeagle/codescore/internal/errors"
	"github.com/standardbeagle/codescore/internal/types"
	"github.com/standardbeagle/codescore/pkg/pathutil"
)

// ToolRunner invokes a delegated executable with a fixed argument
// shape and returns its standard output. A missing executable makes
// the owning backend unavailable; a timeout or unexpected exit code
// fails the backend, never the run.
type ToolRunner struct {
	Executable string
	FixedArgs  []string
	Timeout    time.Duration
	// OKExitCodes are non-zero exits that still carry valid output
	// (scanners commonly exit 1 when findings are present).
	OKExitCodes []int
}

// Available probes for the executable on PATH
func (tr *ToolRunner) Available() bool {
	if tr.Executable == "" {
		return false
	}
	_, err := exec.LookPath(tr.Executable)
	return err == nil
}

// Run executes the tool against the given paths and returns stdout
func (tr *ToolRunner) Run(ctx context.Context, paths []string) ([]byte, error) {
	runCtx := ctx
	if tr.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, tr.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), tr.FixedArgs...), paths...)
	cmd := exec.CommandContext(runCtx, tr.Executable, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, cserrors.NewToolError(tr.Executable, -1, "", fmt.Errorf("timed out after %s", tr.Timeout))
	}
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			for _, code := range tr.OKExitCodes {
				if exitCode == code {
					return stdout.Bytes(), nil
				}
			}
		}
		return nil, cserrors.NewToolError(tr.Executable, exitCode, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

const securityToolBackendName = "security-tool"

// SecurityToolBackend delegates to a bandit-style scanner and
// normalizes its JSON report into SecurityIssue entries.
type SecurityToolBackend struct {
	runner ToolRunner
	root   string
}

// NewSecurityToolBackend creates the delegated security backend
func NewSecurityToolBackend(cfg *config.Config) *SecurityToolBackend {
	return &SecurityToolBackend{
		root: cfg.Project.Root,
		runner: ToolRunner{
			Executable:  cfg.Tools.SecurityTool,
			FixedArgs:   []string{"--format", "json", "--quiet"},
			Timeout:     time.Duration(cfg.Tools.TimeoutSec) * time.Second,
			OKExitCodes: []int{1}, // bandit exits 1 when findings exist
		},
	}
}

func (b *SecurityToolBackend) Name() string { return securityToolBackendName }

func (b *SecurityToolBackend) Description() string {
	return "Delegated security scanning via an external tool"
}

func (b *SecurityToolBackend) Capabilities() []Capability {
	return []Capability{CapabilitySecurity}
}

func (b *SecurityToolBackend) IsAvailable() bool { return b.runner.Available() }

func (b *SecurityToolBackend) Analyze(ctx context.Context, files []types.SourceFile) (*types.AnalysisResult, error) {
	result := types.NewAnalysisResult()
	if len(files) == 0 {
		return result, nil
	}
	output, err := b.runner.Run(ctx, toolFilePaths(files, b.root))
	if err != nil {
		return nil, err
	}
	issues, err := parseSecurityToolOutput(output)
	if err != nil {
		return nil, cserrors.NewToolError(b.runner.Executable, 0, "", err)
	}
	result.SecurityIssues = pathutil.ToRelativeSecurityIssues(issues, b.root)
	result.Metrics["security_tool.findings"] = float64(len(issues))
	return result, nil
}

// securityToolReport mirrors the bandit JSON report shape
type securityToolReport struct {
	Results []struct {
		Filename        string `json:"filename"`
		TestID          string `json:"test_id"`
		IssueSeverity   string `json:"issue_severity"`
		IssueConfidence string `json:"issue_confidence"`
		IssueText       string `json:"issue_text"`
		LineNumber      int    `json:"line_number"`
		MoreInfo        string `json:"more_info"`
	} `json:"results"`
}

func parseSecurityToolOutput(output []byte) ([]types.SecurityIssue, error) {
	var report securityToolReport
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, fmt.Errorf("malformed tool output: %w", err)
	}
	issues := make([]types.SecurityIssue, 0, len(report.Results))
	for _, r := range report.Results {
		issues = append(issues, types.SecurityIssue{
			RuleID:      r.TestID,
			Severity:    normalizeSeverity(r.IssueSeverity),
			Confidence:  normalizeConfidence(r.IssueConfidence),
			FilePath:    r.Filename,
			Line:        r.LineNumber,
			Description: r.IssueText,
			Remediation: r.MoreInfo,
		})
	}
	return issues, nil
}

const deadCodeToolBackendName = "deadcode-tool"

// DeadCodeToolBackend delegates to a vulture-style scanner and
// normalizes its JSON report into DeadCodeIssue entries.
type DeadCodeToolBackend struct {
	runner ToolRunner
	root   string
}

// NewDeadCodeToolBackend creates the delegated dead-code backend
func NewDeadCodeToolBackend(cfg *config.Config) *DeadCodeToolBackend {
	return &DeadCodeToolBackend{
		root: cfg.Project.Root,
		runner: ToolRunner{
			Executable:  cfg.Tools.DeadCodeTool,
			FixedArgs:   []string{"--format", "json"},
			Timeout:     time.Duration(cfg.Tools.TimeoutSec) * time.Second,
			OKExitCodes: []int{1, 3}, // vulture exits 3 when dead code is found
		},
	}
}

func (b *DeadCodeToolBackend) Name() string { return deadCodeToolBackendName }

func (b *DeadCodeToolBackend) Description() string {
	return "Delegated dead-code detection via an external tool"
}

func (b *DeadCodeToolBackend) Capabilities() []Capability {
	return []Capability{CapabilityDeadCode}
}

func (b *DeadCodeToolBackend) IsAvailable() bool { return b.runner.Available() }

func (b *DeadCodeToolBackend) Analyze(ctx context.Context, files []types.SourceFile) (*types.AnalysisResult, error) {
	result := types.NewAnalysisResult()
	if len(files) == 0 {
		return result, nil
	}
	output, err := b.runner.Run(ctx, toolFilePaths(files, b.root))
	if err != nil {
		return nil, err
	}
	issues, err := parseDeadCodeToolOutput(output)
	if err != nil {
		return nil, cserrors.NewToolError(b.runner.Executable, 0, "", err)
	}
	result.DeadCode = pathutil.ToRelativeDeadCode(issues, b.root)
	result.Metrics["deadcode_tool.findings"] = float64(len(issues))
	return result, nil
}

// deadCodeEntry mirrors one entry of the dead-code tool report
type deadCodeEntry struct {
	Filename    string `json:"filename"`
	ItemType    string `json:"item_type"`
	Name        string `json:"name"`
	FirstLineno int    `json:"first_lineno"`
	LastLineno  int    `json:"last_lineno"`
	Confidence  int    `json:"confidence"` // percent
	Size        int    `json:"size"`
}

func parseDeadCodeToolOutput(output []byte) ([]types.DeadCodeIssue, error) {
	var entries []deadCodeEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("malformed tool output: %w", err)
	}
	issues := make([]types.DeadCodeIssue, 0, len(entries))
	for _, e := range entries {
		removable := e.Size
		if removable == 0 && e.LastLineno >= e.FirstLineno {
			removable = e.LastLineno - e.FirstLineno + 1
		}
		issues = append(issues, types.DeadCodeIssue{
			Kind:           normalizeDeadCodeKind(e.ItemType),
			Name:           e.Name,
			FilePath:       e.Filename,
			Line:           e.FirstLineno,
			Confidence:     float64(e.Confidence) / 100.0,
			RemovableLines: removable,
		})
	}
	return issues, nil
}

// toolFilePaths builds the argument list for a delegated tool. File
// paths are root-relative inside the engine; external tools run from
// the engine's working directory and need absolute paths. Reported
// paths are converted back to root-relative after parsing.
func toolFilePaths(files []types.SourceFile, root string) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		if root != "" {
			paths[i] = filepath.Join(root, filepath.FromSlash(f.Path))
		} else {
			paths[i] = f.Path
		}
	}
	return paths
}

func normalizeSeverity(s string) types.Severity {
	switch strings.ToLower(s) {
	case "critical":
		return types.SeverityCritical
	case "high":
		return types.SeverityHigh
	case "medium":
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func normalizeConfidence(s string) types.Confidence {
	switch strings.ToLower(s) {
	case "high":
		return types.ConfidenceHigh
	case "medium":
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

func normalizeDeadCodeKind(itemType string) types.DeadCodeKind {
	switch strings.ToLower(itemType) {
	case "function", "method":
		return types.DeadCodeFunction
	case "class":
		return types.DeadCodeClass
	case "variable", "attribute", "property":
		return types.DeadCodeVariable
	case "import":
		return types.DeadCodeImport
	default:
		return types.DeadCodeUnreachable
	}
}
