package analysis

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescore/internal/config"
	cserrors "github.com/standardbeagle/codescore/internal/errors"
	"github.com/standardbeagle/codescore/internal/types"
)

func TestParseSecurityToolOutput(t *testing.T) {
	output := []byte(`{
		"results": [
			{
				"filename": "app/db.py",
				"test_id": "B608",
				"issue_severity": "MEDIUM",
				"issue_confidence": "HIGH",
				"issue_text": "Possible SQL injection vector",
				"line_number": 42,
				"more_info": "https://example.invalid/b608"
			},
			{
				"filename": "app/main.py",
				"test_id": "B102",
				"issue_severity": "high",
				"issue_confidence": "medium",
				"issue_text": "exec used",
				"line_number": 7
			}
		]
	}`)

	issues, err := parseSecurityToolOutput(output)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, "B608", issues[0].RuleID)
	assert.Equal(t, types.SeverityMedium, issues[0].Severity)
	assert.Equal(t, types.ConfidenceHigh, issues[0].Confidence)
	assert.Equal(t, "app/db.py", issues[0].FilePath)
	assert.Equal(t, 42, issues[0].Line)
	assert.Equal(t, "https://example.invalid/b608", issues[0].Remediation)

	assert.Equal(t, types.SeverityHigh, issues[1].Severity)
	assert.Equal(t, types.ConfidenceMedium, issues[1].Confidence)
}

func TestParseSecurityToolOutputMalformed(t *testing.T) {
	_, err := parseSecurityToolOutput([]byte("not json"))
	assert.Error(t, err)
}

func TestParseDeadCodeToolOutput(t *testing.T) {
	output := []byte(`[
		{
			"filename": "app/util.py",
			"item_type": "function",
			"name": "unused_helper",
			"first_lineno": 10,
			"last_lineno": 18,
			"confidence": 90,
			"size": 9
		},
		{
			"filename": "app/util.py",
			"item_type": "import",
			"name": "os",
			"first_lineno": 1,
			"last_lineno": 1,
			"confidence": 90
		},
		{
			"filename": "app/legacy.py",
			"item_type": "attribute",
			"name": "stale",
			"first_lineno": 5,
			"last_lineno": 5,
			"confidence": 60
		}
	]`)

	issues, err := parseDeadCodeToolOutput(output)
	require.NoError(t, err)
	require.Len(t, issues, 3)

	assert.Equal(t, types.DeadCodeFunction, issues[0].Kind)
	assert.Equal(t, "unused_helper", issues[0].Name)
	assert.Equal(t, 10, issues[0].Line)
	assert.InDelta(t, 0.9, issues[0].Confidence, 0.001)
	assert.Equal(t, 9, issues[0].RemovableLines)

	// size absent: spans the reported line range
	assert.Equal(t, types.DeadCodeImport, issues[1].Kind)
	assert.Equal(t, 1, issues[1].RemovableLines)

	assert.Equal(t, types.DeadCodeVariable, issues[2].Kind)
	assert.InDelta(t, 0.6, issues[2].Confidence, 0.001)
}

func TestNormalizeDeadCodeKind(t *testing.T) {
	tests := []struct {
		itemType string
		want     types.DeadCodeKind
	}{
		{"function", types.DeadCodeFunction},
		{"method", types.DeadCodeFunction},
		{"class", types.DeadCodeClass},
		{"variable", types.DeadCodeVariable},
		{"property", types.DeadCodeVariable},
		{"import", types.DeadCodeImport},
		{"unreachable_code", types.DeadCodeUnreachable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDeadCodeKind(tt.itemType), tt.itemType)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, types.SeverityCritical, normalizeSeverity("CRITICAL"))
	assert.Equal(t, types.SeverityHigh, normalizeSeverity("High"))
	assert.Equal(t, types.SeverityMedium, normalizeSeverity("medium"))
	assert.Equal(t, types.SeverityLow, normalizeSeverity("LOW"))
	assert.Equal(t, types.SeverityLow, normalizeSeverity("unknown"))
}

func TestToolRunnerExitCodes(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not on PATH")
	}

	runner := ToolRunner{
		Executable:  "sh",
		FixedArgs:   []string{"-c", "echo '[]'; exit 3"},
		OKExitCodes: []int{3},
	}
	output, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(output))

	// The same exit code fails when it is not allow-listed
	runner.OKExitCodes = []int{1}
	_, err = runner.Run(context.Background(), nil)
	var toolErr *cserrors.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 3, toolErr.ExitCode)
}

func TestToolRunnerUnavailable(t *testing.T) {
	runner := ToolRunner{Executable: "definitely-not-on-path-xyz"}
	assert.False(t, runner.Available())

	runner.Executable = ""
	assert.False(t, runner.Available())
}

func TestToolBackendsMetadata(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.SecurityTool = "definitely-not-on-path-xyz"
	cfg.Tools.DeadCodeTool = "definitely-not-on-path-xyz"

	sec := NewSecurityToolBackend(cfg)
	assert.Equal(t, "security-tool", sec.Name())
	assert.Equal(t, []Capability{CapabilitySecurity}, sec.Capabilities())
	assert.False(t, sec.IsAvailable())

	dead := NewDeadCodeToolBackend(cfg)
	assert.Equal(t, "deadcode-tool", dead.Name())
	assert.Equal(t, []Capability{CapabilityDeadCode}, dead.Capabilities())
	assert.False(t, dead.IsAvailable())
}

func TestToolFilePaths(t *testing.T) {
	files := []types.SourceFile{
		{Path: "app/main.py"},
		{Path: "lib/util.py"},
	}

	paths := toolFilePaths(files, "/project")
	assert.Equal(t, []string{
		filepath.Join("/project", "app", "main.py"),
		filepath.Join("/project", "lib", "util.py"),
	}, paths)

	// Without a root the relative paths pass through untouched
	assert.Equal(t, []string{"app/main.py", "lib/util.py"}, toolFilePaths(files, ""))
}

func TestToolBackendsEmptyInput(t *testing.T) {
	cfg := config.Default()
	sec := NewSecurityToolBackend(cfg)
	result, err := sec.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.SecurityIssues)

	dead := NewDeadCodeToolBackend(cfg)
	result, err = dead.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.DeadCode)
}
