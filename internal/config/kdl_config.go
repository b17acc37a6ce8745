package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL parses a .codescore.kdl document on top of the defaults.
//
//	project { root "."; name "myservice" }
//	analysis {
//	    security true
//	    dead_code true
//	    duplicates true
//	    complexity_threshold 10
//	    similarity_threshold 0.75
//	    backends "structural" "duplicates"
//	}
//	tools { security_tool "bandit"; deadcode_tool "vulture"; timeout_sec 60 }
//	engine { parallel true; file_workers 4; watch_debounce_ms 300 }
//	include "**/*.py"
//	exclude "**/migrations/**"
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "security":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.EnableSecurity = b
					}
				case "dead_code":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.EnableDeadCode = b
					}
				case "duplicates":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.EnableDuplicates = b
					}
				case "complexity_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.ComplexityThreshold = v
					}
				case "similarity_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Analysis.SimilarityThreshold = v
					}
				case "min_duplicate_lines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MinDuplicateLines = v
					}
				case "max_compare_files":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxCompareFiles = v
					}
				case "backends":
					if names := collectStringArgs(cn); len(names) > 0 {
						cfg.Analysis.Backends = names
					}
				}
			}
		case "tools":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "security_tool":
					if s, ok := firstStringArg(cn); ok {
						cfg.Tools.SecurityTool = s
					}
				case "deadcode_tool":
					if s, ok := firstStringArg(cn); ok {
						cfg.Tools.DeadCodeTool = s
					}
				case "timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.Tools.TimeoutSec = v
					}
				}
			}
		case "engine":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "parallel":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Engine.Parallel = b
					}
				case "file_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Engine.FileWorkers = v
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Engine.WatchDebounceMs = v
					}
				}
			}
		case "include":
			if patterns := collectStringArgs(n); len(patterns) > 0 {
				cfg.Include = patterns
			}
		case "exclude":
			if patterns := collectStringArgs(n); len(patterns) > 0 {
				cfg.Exclude = append(cfg.Exclude, patterns...)
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads strings from inline arguments, falling back
// to child nodes for block format like exclude { "pattern" }
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, cn := range n.Children {
			if name := nodeName(cn); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
