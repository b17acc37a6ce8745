package errors

import (
	"fmt"
	"time"
)

// Error types for the codescore analysis engine
type ErrorType string

const (
	// File-level errors: one file is unreadable or unparsable
	ErrorTypeFile  ErrorType = "file"
	ErrorTypeParse ErrorType = "parse"

	// Backend-level errors: one backend's analyze call failed
	ErrorTypeBackend ErrorType = "backend"

	// External tool errors: delegated executable misbehaved
	ErrorTypeTool ErrorType = "tool"

	// Run-level errors: the run as a whole could not complete
	ErrorTypeRun ErrorType = "run"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// FileError represents a file read or access failure
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error with context
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       ErrorTypeFile,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a syntax-tree parse failure for one file
type ParseError struct {
	Type       ErrorType
	Path       string
	Line       int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line int, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Path:       path,
		Line:       line,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %s:%d: %v", e.Path, e.Line, e.Underlying)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// BackendError represents a failure inside one backend's analyze call.
// Caught at the orchestrator boundary; never propagates past it.
type BackendError struct {
	Type       ErrorType
	Backend    string
	Underlying error
	Timestamp  time.Time
}

// NewBackendError creates a new backend error
func NewBackendError(backend string, err error) *BackendError {
	return &BackendError{
		Type:       ErrorTypeBackend,
		Backend:    backend,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Backend, e.Underlying)
}

// Unwrap returns the underlying error
func (e *BackendError) Unwrap() error {
	return e.Underlying
}

// ToolError represents an external tool invocation failure
type ToolError struct {
	Type       ErrorType
	Tool       string
	ExitCode   int
	Stderr     string
	Underlying error
	Timestamp  time.Time
}

// NewToolError creates a new external tool error
func NewToolError(tool string, exitCode int, stderr string, err error) *ToolError {
	return &ToolError{
		Type:       ErrorTypeTool,
		Tool:       tool,
		ExitCode:   exitCode,
		Stderr:     stderr,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("tool %s failed (exit %d): %v: %s", e.Tool, e.ExitCode, e.Underlying, e.Stderr)
	}
	return fmt.Sprintf("tool %s failed (exit %d): %v", e.Tool, e.ExitCode, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ToolError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration validation failure
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError aggregates multiple errors, used for the run-level FAILED
// message when every configured backend failed.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, filtering out nils
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
