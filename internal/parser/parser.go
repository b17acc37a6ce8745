package parser

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	cserrors "github.com/standardbeagle/codescore/internal/errors"
)

// Parser wraps a tree-sitter parser configured for Python source.
// A Parser instance is not safe for concurrent use; each analysis
// worker owns its own.
type Parser struct {
	inner *tree_sitter.Parser
}

// New creates a Python parser
func New() (*Parser, error) {
	p := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set python language: %w", err)
	}
	return &Parser{inner: p}, nil
}

// Parse parses content into a syntax tree. A tree whose root contains
// syntax errors is rejected so callers can record a single parse error
// entry and move on. Callers own the returned tree and must Close it.
func (p *Parser) Parse(path string, content []byte) (*tree_sitter.Tree, error) {
	tree := p.inner.Parse(content, nil)
	if tree == nil {
		return nil, cserrors.NewParseError(path, 0, fmt.Errorf("parser returned no tree"))
	}
	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, cserrors.NewParseError(path, 0, fmt.Errorf("tree has no root node"))
	}
	if root.HasError() {
		line := firstErrorLine(root)
		tree.Close()
		return nil, cserrors.NewParseError(path, line, fmt.Errorf("syntax error"))
	}
	return tree, nil
}

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	if p.inner != nil {
		p.inner.Close()
	}
}

// firstErrorLine finds the 1-based line of the first ERROR node
func firstErrorLine(node *tree_sitter.Node) int {
	if node.IsError() {
		return int(node.StartPosition().Row) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			if line := firstErrorLine(child); line > 0 {
				return line
			}
		}
	}
	return 0
}

// NodeText returns the source text spanned by a node
func NodeText(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint(len(content)) {
		return ""
	}
	return string(content[start:end])
}

// LineCounts classifies the physical lines of a source file
type LineCounts struct {
	Code    int
	Comment int
	Blank   int
}

// CountLines splits content into code, comment-only and blank lines.
// Docstrings count as code; inline trailing comments count as code.
func CountLines(content string) LineCounts {
	var counts LineCounts
	if content == "" {
		return counts
	}
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			counts.Blank++
		case strings.HasPrefix(trimmed, "#"):
			counts.Comment++
		default:
			counts.Code++
		}
	}
	return counts
}
