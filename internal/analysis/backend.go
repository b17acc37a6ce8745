package analysis

import (
	"context"

	"github.com/standardbeagle/codescore/internal/config"
	"github.com/standardbeagle/codescore/internal/types"
)

// Capability names one kind of analysis a backend can perform
type Capability string

const (
	CapabilityStructure   Capability = "structure"
	CapabilityComplexity  Capability = "complexity"
	CapabilitySecurity    Capability = "security"
	CapabilityDeadCode    Capability = "dead_code"
	CapabilityDuplication Capability = "duplication"
)

// Backend is one self-contained analysis unit. Name, Description and
// Capabilities are pure metadata. IsAvailable is a precondition probe:
// it must never fail, and false means the orchestrator skips (not
// fails) the backend. Analyze is the only side-effecting operation; it
// must tolerate an empty file list and capture per-file failures as
// error entries instead of aborting the remaining files.
type Backend interface {
	Name() string
	Description() string
	Capabilities() []Capability
	IsAvailable() bool
	Analyze(ctx context.Context, files []types.SourceFile) (*types.AnalysisResult, error)
}

// Registry holds statically registered backends in execution order.
// No dynamic discovery: the configured name list selects and orders a
// fixed set of constructors.
type Registry struct {
	backends []Backend
	byName   map[string]Backend
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Backend)}
}

// Register appends a backend, keeping first registration for a name
func (r *Registry) Register(b Backend) {
	if b == nil {
		return
	}
	if _, exists := r.byName[b.Name()]; exists {
		return
	}
	r.backends = append(r.backends, b)
	r.byName[b.Name()] = b
}

// Backends returns the registered backends in registration order
func (r *Registry) Backends() []Backend {
	return r.backends
}

// Get looks a backend up by name
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Len returns the number of registered backends
func (r *Registry) Len() int {
	return len(r.backends)
}

// BuildRegistry assembles the registry from the configured, ordered
// backend name list. Unknown names are ignored; enable flags filter
// the optional backends.
func BuildRegistry(cfg *config.Config) *Registry {
	available := map[string]func() Backend{
		"structural": func() Backend { return NewStructuralBackend(cfg) },
		"security-patterns": func() Backend {
			if !cfg.Analysis.EnableSecurity {
				return nil
			}
			return NewSecurityPatternBackend()
		},
		"security-tool": func() Backend {
			if !cfg.Analysis.EnableSecurity {
				return nil
			}
			return NewSecurityToolBackend(cfg)
		},
		"deadcode-tool": func() Backend {
			if !cfg.Analysis.EnableDeadCode {
				return nil
			}
			return NewDeadCodeToolBackend(cfg)
		},
		"duplicates": func() Backend {
			if !cfg.Analysis.EnableDuplicates {
				return nil
			}
			return NewDuplicateBackend(cfg)
		},
	}

	registry := NewRegistry()
	for _, name := range cfg.Analysis.Backends {
		construct, ok := available[name]
		if !ok {
			continue
		}
		registry.Register(construct())
	}
	return registry
}
