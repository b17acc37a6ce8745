package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserrors "github.com/standardbeagle/codescore/internal/errors"
)

func TestParseValidPython(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	code := []byte("def greet(name):\n    return f\"hello {name}\"\n")
	tree, err := p.Parse("greet.py", code)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	require.NotNil(t, root)
	assert.Equal(t, "module", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseBrokenPythonReturnsParseError(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	code := []byte("def broken(:\n    return\n")
	tree, err := p.Parse("broken.py", code)
	require.Error(t, err)
	assert.Nil(t, tree)

	var parseErr *cserrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken.py", parseErr.Path)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    LineCounts
	}{
		{"empty", "", LineCounts{}},
		{"single code line", "x = 1\n", LineCounts{Code: 1}},
		{"mixed", "# header\n\nx = 1\ny = 2  # trailing\n\n# footer\n", LineCounts{Code: 2, Comment: 2, Blank: 2}},
		{"whitespace only is blank", "   \n\t\n", LineCounts{Blank: 2}},
		{"no trailing newline", "x = 1", LineCounts{Code: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountLines(tt.content))
		})
	}
}
