package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codescore/internal/analysis"
	"github.com/standardbeagle/codescore/internal/config"
	cserrors "github.com/standardbeagle/codescore/internal/errors"
	"github.com/standardbeagle/codescore/internal/scoring"
	"github.com/standardbeagle/codescore/internal/types"
)

// RunState is the lifecycle state of one analysis run
type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// Run is the record of one analysis execution. States only move
// forward; completed and failed are terminal.
type Run struct {
	ID         string                       `json:"id"`
	State      RunState                     `json:"state"`
	Note       string                       `json:"note,omitempty"`
	StartedAt  time.Time                    `json:"started_at"`
	FinishedAt time.Time                    `json:"finished_at"`
	FileCount  int                          `json:"file_count"`
	Stats      []types.BackendRunStatistics `json:"backend_stats"`
	Result     *types.AnalysisResult        `json:"result"`
	Quality    *types.QualityMetrics        `json:"quality"`
}

// FileSource produces the file set for a run. Scanner is the
// production implementation.
type FileSource interface {
	Discover() ([]types.SourceFile, []types.AnalysisError, error)
}

// Orchestrator coordinates file discovery, backend execution, result
// merging and scoring for a single run at a time.
type Orchestrator struct {
	cfg      *config.Config
	registry *analysis.Registry
	source   FileSource
	scorer   *scoring.Scorer
}

// NewOrchestrator builds an orchestrator from the configuration
func NewOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		registry: analysis.BuildRegistry(cfg),
		source:   NewScanner(cfg),
		scorer:   scoring.NewScorer(cfg),
	}
}

// Registry exposes the assembled backend registry
func (o *Orchestrator) Registry() *analysis.Registry {
	return o.registry
}

// Execute performs one full analysis run. A backend failure never
// fails the run on its own: the run fails only when no backend
// produced a result (all failed or skipped) and more than one is
// configured. The returned error covers infrastructure failures
// (unreadable root), not analysis findings.
func (o *Orchestrator) Execute(ctx context.Context, runID string) (*Run, error) {
	run := &Run{
		ID:        runID,
		State:     StatePending,
		StartedAt: time.Now(),
		Result:    types.NewAnalysisResult(),
	}

	files, readErrors, err := o.source.Discover()
	if err != nil {
		run.State = StateFailed
		run.Note = err.Error()
		run.FinishedAt = time.Now()
		return run, err
	}
	run.State = StateRunning
	run.FileCount = len(files)
	run.Result.Errors = append(run.Result.Errors, readErrors...)

	if len(files) == 0 {
		run.Note = "no files matched the include patterns"
		run.Quality = o.scorer.Score(run.Result, 0)
		run.State = StateCompleted
		run.FinishedAt = time.Now()
		return run, nil
	}

	backends := o.registry.Backends()
	outcomes := make([]backendOutcome, len(backends))
	if o.cfg.Engine.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, backend := range backends {
			g.Go(func() error {
				outcomes[i] = executeBackend(gctx, backend, files)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, backend := range backends {
			outcomes[i] = executeBackend(ctx, backend, files)
		}
	}

	// Single-writer merge in registry order keeps output deterministic
	// regardless of backend finish order.
	successes := 0
	var failureErrs []error
	for i, backend := range backends {
		outcome := outcomes[i]
		run.Stats = append(run.Stats, outcome.stats)
		switch outcome.stats.Status {
		case types.StatusSkipped:
			continue
		case types.StatusFailed:
			failureErrs = append(failureErrs, outcome.err)
			run.Result.Errors = append(run.Result.Errors, types.AnalysisError{
				Backend: backend.Name(),
				Message: outcome.stats.Error,
			})
		default:
			successes++
			run.Result.Merge(outcome.result)
		}
	}

	run.Quality = o.scorer.Score(run.Result, len(files))
	run.FinishedAt = time.Now()

	if successes == 0 && o.registry.Len() > 1 {
		run.State = StateFailed
		if len(failureErrs) > 0 {
			run.Note = "all backends failed: " + cserrors.NewMultiError(failureErrs).Error()
		} else {
			run.Note = "no configured backend was available"
		}
		return run, nil
	}
	run.State = StateCompleted
	if len(failureErrs) > 0 {
		run.Note = "completed with backend failures: " + cserrors.NewMultiError(failureErrs).Error()
	}
	return run, nil
}

type backendOutcome struct {
	result *types.AnalysisResult
	stats  types.BackendRunStatistics
	err    error
}

// executeBackend runs one backend behind a panic boundary and builds
// its statistics. A skipped backend is never invoked.
func executeBackend(ctx context.Context, backend analysis.Backend, files []types.SourceFile) backendOutcome {
	stats := types.BackendRunStatistics{Backend: backend.Name()}
	if !backend.IsAvailable() {
		stats.Status = types.StatusSkipped
		return backendOutcome{stats: stats}
	}

	start := time.Now()
	result, err := analyzeSafely(ctx, backend, files)
	stats.Duration = time.Since(start)
	stats.FilesProcessed = len(files)

	if err != nil {
		wrapped := cserrors.NewBackendError(backend.Name(), err)
		stats.Status = types.StatusFailed
		stats.Error = wrapped.Error()
		return backendOutcome{stats: stats, err: wrapped}
	}

	stats.Status = types.StatusSuccess
	if len(result.Errors) > 0 {
		stats.Status = types.StatusPartial
	}
	stats.IssuesFound = result.IssueCount()
	stats.IssuesBySeverity = countBySeverity(result.SecurityIssues)
	stats.IssuesByCategory = countByCategory(result)
	return backendOutcome{result: result, stats: stats}
}

// analyzeSafely converts a backend panic into a backend failure so a
// buggy backend cannot take the run down
func analyzeSafely(ctx context.Context, backend analysis.Backend, files []types.SourceFile) (result *types.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("backend panicked: %v", r)
		}
	}()
	result, err = backend.Analyze(ctx, files)
	if err == nil && result == nil {
		result = types.NewAnalysisResult()
	}
	return result, err
}

func countBySeverity(issues []types.SecurityIssue) map[types.Severity]int {
	if len(issues) == 0 {
		return nil
	}
	counts := make(map[types.Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}

func countByCategory(result *types.AnalysisResult) map[string]int {
	counts := make(map[string]int)
	if n := len(result.SecurityIssues); n > 0 {
		counts["security"] = n
	}
	if n := len(result.DeadCode); n > 0 {
		counts["dead_code"] = n
	}
	if n := len(result.Duplicates); n > 0 {
		counts["duplication"] = n
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}
