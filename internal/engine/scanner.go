package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codescore/internal/config"
	cserrors "github.com/standardbeagle/codescore/internal/errors"
	"github.com/standardbeagle/codescore/internal/parser"
	"github.com/standardbeagle/codescore/internal/types"
)

// Scanner discovers analyzable source files under the project root.
// Hidden entries and build artifact directories never enter the set;
// include and exclude globs match against slash-separated paths
// relative to the root.
type Scanner struct {
	cfg              *config.Config
	exclude          []string
	detectedExcludes []string
}

// NewScanner creates a scanner for the configured project root
func NewScanner(cfg *config.Config) *Scanner {
	detector := config.NewBuildArtifactDetector(cfg.Project.Root)
	return &Scanner{
		cfg:              cfg,
		exclude:          cfg.Exclude,
		detectedExcludes: detector.DetectOutputDirectories(),
	}
}

// Discover walks the project root and returns matching source files
// with their content and line counts loaded. Unreadable files are
// returned as error entries alongside the readable ones.
func (s *Scanner) Discover() ([]types.SourceFile, []types.AnalysisError, error) {
	root := s.cfg.Project.Root
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, cserrors.NewFileError("stat", root, err)
	}
	if !info.IsDir() {
		return nil, nil, cserrors.NewFileError("stat", root, os.ErrInvalid)
	}

	var files []types.SourceFile
	var readErrors []types.AnalysisError

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped, not fatal
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || config.StaticArtifactDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !s.matches(rel) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			readErrors = append(readErrors, types.AnalysisError{FilePath: rel, Message: err.Error()})
			return nil
		}
		counts := parser.CountLines(string(content))
		files = append(files, types.SourceFile{
			Path:         rel,
			Name:         name,
			Content:      string(content),
			CodeLines:    counts.Code,
			CommentLines: counts.Comment,
			BlankLines:   counts.Blank,
		})
		return nil
	})
	if walkErr != nil {
		return nil, nil, cserrors.NewFileError("walk", root, walkErr)
	}
	return files, readErrors, nil
}

// matches applies include globs first, then config and detected
// exclude globs
func (s *Scanner) matches(rel string) bool {
	included := false
	for _, pattern := range s.cfg.Include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range s.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return false
		}
	}
	for _, pattern := range s.detectedExcludes {
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return false
		}
	}
	return true
}
