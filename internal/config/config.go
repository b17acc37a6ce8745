package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	cserrors "github.com/standardbeagle/codescore/internal/errors"
)

// Default analysis thresholds, shared between code and config parsing
const (
	DefaultComplexityThreshold = 10
	DefaultSimilarityThreshold = 0.75
	DefaultMinDuplicateLines   = 10
	DefaultMaxCompareFiles     = 200
	DefaultToolTimeoutSec      = 60
	DefaultWatchDebounceMs     = 300
)

type Config struct {
	Version  int
	Project  Project
	Analysis Analysis
	Tools    Tools
	Engine   Engine
	Include  []string
	Exclude  []string
}

type Project struct {
	Root string
	Name string
}

type Analysis struct {
	EnableSecurity      bool
	EnableDeadCode      bool
	EnableDuplicates    bool
	ComplexityThreshold int
	SimilarityThreshold float64 // [0,1]
	MinDuplicateLines   int     // minimum non-blank lines before a file enters pair comparison
	MaxCompareFiles     int     // bound on the O(n^2) candidate set
	Backends            []string
}

type Tools struct {
	SecurityTool string // executable for the delegated security scanner
	DeadCodeTool string // executable for the delegated dead-code scanner
	TimeoutSec   int    // per-invocation bound; a timeout fails the backend, never the run
}

type Engine struct {
	Parallel        bool
	FileWorkers     int // 0 = auto-detect (NumCPU)
	WatchDebounceMs int
}

// DefaultBackendOrder is the backend execution order when the config
// names none.
var DefaultBackendOrder = []string{"structural", "security-patterns", "security-tool", "deadcode-tool", "duplicates"}

// Default returns the configuration used when no .codescore.kdl exists
func Default() *Config {
	root, err := os.Getwd()
	if err != nil || root == "" {
		root = "."
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Analysis: Analysis{
			EnableSecurity:      true,
			EnableDeadCode:      true,
			EnableDuplicates:    true,
			ComplexityThreshold: DefaultComplexityThreshold,
			SimilarityThreshold: DefaultSimilarityThreshold,
			MinDuplicateLines:   DefaultMinDuplicateLines,
			MaxCompareFiles:     DefaultMaxCompareFiles,
			Backends:            append([]string(nil), DefaultBackendOrder...),
		},
		Tools: Tools{
			SecurityTool: "bandit",
			DeadCodeTool: "vulture",
			TimeoutSec:   DefaultToolTimeoutSec,
		},
		Engine: Engine{
			Parallel:        true,
			FileWorkers:     0,
			WatchDebounceMs: DefaultWatchDebounceMs,
		},
		Include: []string{"**/*.py"},
		Exclude: []string{},
	}
}

// FileWorkerCount resolves the effective per-file parse worker count
func (c *Config) FileWorkerCount() int {
	if c.Engine.FileWorkers > 0 {
		return c.Engine.FileWorkers
	}
	return runtime.NumCPU()
}

// Validate checks config values are in range
func (c *Config) Validate() error {
	if c.Project.Root == "" {
		return cserrors.NewConfigError("project.root", "", errors.New("must not be empty"))
	}
	if c.Analysis.ComplexityThreshold < 1 {
		return cserrors.NewConfigError("analysis.complexity_threshold",
			strconv.Itoa(c.Analysis.ComplexityThreshold), errors.New("must be >= 1"))
	}
	if c.Analysis.SimilarityThreshold < 0 || c.Analysis.SimilarityThreshold > 1 {
		return cserrors.NewConfigError("analysis.similarity_threshold",
			fmt.Sprintf("%v", c.Analysis.SimilarityThreshold), errors.New("must be in [0,1]"))
	}
	if c.Analysis.MinDuplicateLines < 1 {
		return cserrors.NewConfigError("analysis.min_duplicate_lines",
			strconv.Itoa(c.Analysis.MinDuplicateLines), errors.New("must be >= 1"))
	}
	if c.Analysis.MaxCompareFiles < 2 {
		return cserrors.NewConfigError("analysis.max_compare_files",
			strconv.Itoa(c.Analysis.MaxCompareFiles), errors.New("must be >= 2"))
	}
	if c.Tools.TimeoutSec < 1 {
		return cserrors.NewConfigError("tools.timeout_sec",
			strconv.Itoa(c.Tools.TimeoutSec), errors.New("must be >= 1 second"))
	}
	if len(c.Analysis.Backends) == 0 {
		return cserrors.NewConfigError("analysis.backends", "", errors.New("at least one backend must be configured"))
	}
	seen := make(map[string]bool, len(c.Analysis.Backends))
	for _, name := range c.Analysis.Backends {
		if name == "" {
			return cserrors.NewConfigError("analysis.backends", "", errors.New("backend names must not be empty"))
		}
		if seen[name] {
			return cserrors.NewConfigError("analysis.backends", name, errors.New("configured more than once"))
		}
		seen[name] = true
	}
	return nil
}

// Load reads the config file at path, falling back to defaults when it
// does not exist. Relative project roots are resolved against the
// config file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".codescore.kdl"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		base := filepath.Dir(path)
		cfg.Project.Root = filepath.Clean(filepath.Join(base, cfg.Project.Root))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
