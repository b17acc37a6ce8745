// Package pathutil converts between absolute and relative paths.
//
// The engine carries paths relative to the project root so results
// are portable between machines; CLI flags and configuration arrive
// as absolute or user-relative paths. This package is the conversion
// layer between the two representations.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/codescore/internal/types"
)

// ToRelative converts an absolute path to relative based on a root
// directory. Falls back to the original path if conversion fails or
// the path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/app.py", "/home/user/project") → "src/app.py"
//   - ToRelative("/other/location/app.py", "/home/user/project") → "/other/location/app.py" (outside root)
//   - ToRelative("src/app.py", "/home/user/project") → "src/app.py" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// Outside the root the absolute path is clearer than a ../ chain
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return filepath.ToSlash(relPath)
}

// ToRelativeSecurityIssues converts issue paths from absolute to
// relative without modifying the original slice. Intended for output
// boundaries: CLI rendering and JSON serialization.
func ToRelativeSecurityIssues(issues []types.SecurityIssue, rootDir string) []types.SecurityIssue {
	if len(issues) == 0 {
		return issues
	}
	converted := make([]types.SecurityIssue, len(issues))
	copy(converted, issues)
	for i := range converted {
		converted[i].FilePath = ToRelative(converted[i].FilePath, rootDir)
	}
	return converted
}

// ToRelativeDeadCode converts dead-code issue paths from absolute to
// relative without modifying the original slice
func ToRelativeDeadCode(issues []types.DeadCodeIssue, rootDir string) []types.DeadCodeIssue {
	if len(issues) == 0 {
		return issues
	}
	converted := make([]types.DeadCodeIssue, len(issues))
	copy(converted, issues)
	for i := range converted {
		converted[i].FilePath = ToRelative(converted[i].FilePath, rootDir)
	}
	return converted
}
