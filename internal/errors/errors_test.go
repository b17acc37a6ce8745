package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileErrorWrapsUnderlying(t *testing.T) {
	err := NewFileError("read", "src/app.py", fs.ErrPermission)

	assert.Contains(t, err.Error(), "src/app.py")
	assert.Contains(t, err.Error(), "read")
	assert.True(t, stderrors.Is(err, fs.ErrPermission))
	assert.False(t, err.Timestamp.IsZero())
}

func TestParseErrorFormatsLine(t *testing.T) {
	withLine := NewParseError("bad.py", 7, stderrors.New("invalid syntax"))
	assert.Contains(t, withLine.Error(), "bad.py:7")

	withoutLine := NewParseError("bad.py", 0, stderrors.New("invalid syntax"))
	assert.Contains(t, withoutLine.Error(), "bad.py")
	assert.NotContains(t, withoutLine.Error(), ":0")
}

func TestToolErrorIncludesStderr(t *testing.T) {
	cause := stderrors.New("exit status 2")
	err := NewToolError("bandit", 2, "config file not found", cause)

	assert.Contains(t, err.Error(), "bandit")
	assert.Contains(t, err.Error(), "exit 2")
	assert.Contains(t, err.Error(), "config file not found")
	assert.True(t, stderrors.Is(err, cause))

	var toolErr *ToolError
	require.True(t, stderrors.As(err, &toolErr))
	assert.Equal(t, 2, toolErr.ExitCode)
}

func TestBackendError(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewBackendError("duplicates", cause)
	assert.Contains(t, err.Error(), "duplicates")
	assert.True(t, stderrors.Is(err, cause))
}

func TestMultiError(t *testing.T) {
	first := stderrors.New("first")
	second := stderrors.New("second")

	multi := NewMultiError([]error{first, nil, second})
	require.Len(t, multi.Errors, 2)
	assert.Contains(t, multi.Error(), "2 errors")
	assert.True(t, stderrors.Is(multi, first))
	assert.True(t, stderrors.Is(multi, second))

	single := NewMultiError([]error{first})
	assert.Equal(t, "first", single.Error())

	empty := NewMultiError(nil)
	assert.Equal(t, "no errors", empty.Error())
}
