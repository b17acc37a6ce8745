package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codescore/internal/config"
)

// Watcher re-runs analysis when source files under the project root
// change. Event bursts (editor saves, branch switches) are coalesced
// by a debounce window so one burst triggers one run.
type Watcher struct {
	cfg          *config.Config
	orchestrator *Orchestrator
	watcher      *fsnotify.Watcher
	debounce     time.Duration
	onRun        func(*Run)

	cancel context.CancelFunc
	wg     sync.WaitGroup
	runSeq int
}

// NewWatcher creates a watcher that invokes onRun after every
// completed re-analysis
func NewWatcher(cfg *config.Config, orchestrator *Orchestrator, onRun func(*Run)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:          cfg,
		orchestrator: orchestrator,
		watcher:      fsWatcher,
		debounce:     time.Duration(cfg.Engine.WatchDebounceMs) * time.Millisecond,
		onRun:        onRun,
	}, nil
}

// Start adds directory watches and begins processing events. It
// returns immediately; Stop shuts the loop down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatches(w.cfg.Project.Root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Project.Root, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(loopCtx)
	return nil
}

// Stop shuts down event processing and waits for the loop to exit
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	_ = w.watcher.Close()
	w.wg.Wait()
}

// addWatches registers every analyzable directory under root. Hidden
// and build artifact directories are skipped the same way discovery
// skips them.
func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || config.StaticArtifactDirs[name]) {
			return filepath.SkipDir
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			log.Printf("watch: cannot watch %s: %v", path, addErr)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// New directories need their own watch before events from
			// them can arrive
			if event.Op&fsnotify.Create != 0 {
				_ = w.addWatches(event.Name)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			pending = timer.C

		case <-pending:
			timer = nil
			pending = nil
			w.runOnce(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

// relevant filters events down to analyzable source files and
// directory creation
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || config.StaticArtifactDirs[name] {
		return false
	}
	if event.Op&fsnotify.Create != 0 && filepath.Ext(name) == "" {
		// Extension-less creates are only interesting when they are
		// new directories that need their own watch
		info, err := os.Stat(event.Name)
		return err == nil && info.IsDir()
	}
	return strings.HasSuffix(name, ".py")
}

func (w *Watcher) runOnce(ctx context.Context) {
	w.runSeq++
	runID := fmt.Sprintf("watch-%d", w.runSeq)
	run, err := w.orchestrator.Execute(ctx, runID)
	if err != nil {
		log.Printf("watch: run %s failed: %v", runID, err)
		return
	}
	if w.onRun != nil {
		w.onRun(run)
	}
}
