package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescore/internal/types"
)

func scanLine(t *testing.T, line string) []types.SecurityIssue {
	t.Helper()
	backend := NewSecurityPatternBackend()
	result, err := backend.Analyze(context.Background(), []types.SourceFile{
		{Path: "app.py", Name: "app.py", Content: line},
	})
	require.NoError(t, err)
	return result.SecurityIssues
}

func TestSecurityPatternRules(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		ruleID string
	}{
		{"hardcoded password", `password = "hunter2"`, "CS101"},
		{"hardcoded api key", `API_KEY = 'abc123'`, "CS101"},
		{"eval call", `result = eval(user_input)`, "CS102"},
		{"exec call", `exec(payload)`, "CS103"},
		{"subprocess shell", `subprocess.run(cmd, shell=True)`, "CS104"},
		{"pickle loads", `data = pickle.loads(blob)`, "CS105"},
		{"unsafe yaml load", `cfg = yaml.load(stream)`, "CS106"},
		{"mktemp", `path = tempfile.mktemp()`, "CS107"},
		{"md5", `digest = hashlib.md5(data)`, "CS108"},
		{"sql interpolation", `cursor.execute("SELECT * FROM users WHERE id = %s" % uid)`, "CS109"},
		{"sql f-string", `cursor.execute(f"SELECT {col} FROM t")`, "CS109"},
		{"bind all interfaces", `app.run(host="0.0.0.0")`, "CS110"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := scanLine(t, tt.line)
			require.NotEmpty(t, issues, "expected a finding for %q", tt.line)
			assert.Equal(t, tt.ruleID, issues[0].RuleID)
			assert.Equal(t, 1, issues[0].Line)
			assert.Equal(t, "app.py", issues[0].FilePath)
		})
	}
}

func TestSecurityPatternCleanLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"safe yaml load with loader", `cfg = yaml.load(stream, Loader=yaml.SafeLoader)`},
		{"yaml safe_load", `cfg = yaml.safe_load(stream)`},
		{"comment only", `# password = "hunter2"`},
		{"blank line", ``},
		{"eval as identifier suffix", `self.reeval()`},
		{"parameterized sql", `cursor.execute("SELECT * FROM users WHERE id = ?", (uid,))`},
		{"sha256 hash", `digest = hashlib.sha256(data)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, scanLine(t, tt.line))
		})
	}
}

func TestSecurityPatternMultipleFiles(t *testing.T) {
	backend := NewSecurityPatternBackend()
	result, err := backend.Analyze(context.Background(), []types.SourceFile{
		{Path: "a.py", Name: "a.py", Content: "x = 1\n"},
		{Path: "b.py", Name: "b.py", Content: "import os\n\nsecret = \"topsecret\"\nexec(code)\n"},
	})
	require.NoError(t, err)

	require.Len(t, result.SecurityIssues, 2)
	assert.Equal(t, "CS101", result.SecurityIssues[0].RuleID)
	assert.Equal(t, 3, result.SecurityIssues[0].Line)
	assert.Equal(t, "CS103", result.SecurityIssues[1].RuleID)
	assert.Equal(t, 4, result.SecurityIssues[1].Line)
	assert.Equal(t, "b.py", result.SecurityIssues[1].FilePath)
}
