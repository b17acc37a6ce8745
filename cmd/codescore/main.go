package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codescore/internal/config"
	"github.com/standardbeagle/codescore/internal/engine"
	"github.com/standardbeagle/codescore/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	// If root is specified and config path is default, look for config in root directory
	if rootFlag := c.String("root"); rootFlag != "" && configPath == ".codescore.kdl" {
		configPath = filepath.Join(rootFlag, ".codescore.kdl")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if c.IsSet("parallel") {
		cfg.Engine.Parallel = c.Bool("parallel")
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "codescore",
		Usage:                  "Multi-backend source code quality analysis",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".codescore.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to analyze (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.py')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/migrations/**')",
			},
			&cli.BoolFlag{
				Name:  "parallel",
				Usage: "Run backends in parallel (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Run all configured backends and print the scored result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: summary or json",
						Value:   "summary",
					},
				},
				Action: runAnalyze,
			},
			{
				Name:   "backends",
				Usage:  "List configured backends with capabilities and availability",
				Action: runBackends,
			},
			{
				Name:  "watch",
				Usage: "Re-run analysis whenever source files change",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: summary or json",
						Value:   "summary",
					},
				},
				Action: runWatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	orch := engine.NewOrchestrator(cfg)
	runID := fmt.Sprintf("cli-%d", time.Now().UnixNano())
	run, err := orch.Execute(c.Context, runID)
	if err != nil {
		return err
	}
	if err := printRun(run, c.String("format")); err != nil {
		return err
	}
	if run.State == engine.StateFailed {
		return cli.Exit("analysis failed: "+run.Note, 2)
	}
	return nil
}

func runBackends(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	orch := engine.NewOrchestrator(cfg)
	for _, backend := range orch.Registry().Backends() {
		availability := "available"
		if !backend.IsAvailable() {
			availability = "unavailable"
		}
		capabilities := make([]string, 0, len(backend.Capabilities()))
		for _, capability := range backend.Capabilities() {
			capabilities = append(capabilities, string(capability))
		}
		fmt.Printf("%-20s %-12s %s\n    %s\n",
			backend.Name(), availability, strings.Join(capabilities, ","), backend.Description())
	}
	return nil
}

func runWatch(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	format := c.String("format")

	orch := engine.NewOrchestrator(cfg)
	watcher, err := engine.NewWatcher(cfg, orch, func(run *engine.Run) {
		if err := printRun(run, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	// Initial run before waiting for changes
	run, err := orch.Execute(ctx, "watch-initial")
	if err != nil {
		return err
	}
	if err := printRun(run, format); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", cfg.Project.Root)
	<-ctx.Done()
	return nil
}

func printRun(run *engine.Run, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(run)
	case "summary":
		printSummary(run)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want summary or json)", format)
	}
}

func printSummary(run *engine.Run) {
	fmt.Printf("run %s: %s", run.ID, run.State)
	if run.Note != "" {
		fmt.Printf(" (%s)", run.Note)
	}
	fmt.Println()

	q := run.Quality
	if q != nil {
		fmt.Printf("  score %.1f (%s)  complexity %.1f  security %.1f  maintainability %.1f  duplication %.1f  documentation %.1f\n",
			q.OverallScore, q.Grade, q.ComplexityScore, q.SecurityScore,
			q.MaintainabilityScore, q.DuplicationScore, q.DocumentationScore)
		fmt.Printf("  %d files, %d lines, %d functions, %d classes, avg complexity %.1f (max %d)\n",
			q.TotalFiles, q.TotalLines, q.TotalFunctions, q.TotalClasses,
			q.AvgComplexity, q.MaxComplexity)
		fmt.Printf("  issues: %d security, %d dead code, %d duplicate blocks; est. debt %.1fh\n",
			q.SecurityIssueCount, q.DeadCodeCount, q.DuplicateBlockCount, q.TechnicalDebtHours)
	}

	for _, stat := range run.Stats {
		line := fmt.Sprintf("  %-20s %-8s %4d issues  %s",
			stat.Backend, stat.Status, stat.IssuesFound, stat.Duration.Round(time.Millisecond))
		if stat.Error != "" {
			line += "  " + stat.Error
		}
		fmt.Println(line)
	}
}
