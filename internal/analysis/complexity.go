package analysis

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// branchNodeKinds are the Python syntax constructs that open an
// independent execution path. elif clauses count separately from their
// if statement; boolean operators count once per operator node.
var branchNodeKinds = map[string]bool{
	"if_statement":           true,
	"elif_clause":            true,
	"for_statement":          true,
	"while_statement":        true,
	"except_clause":          true,
	"conditional_expression": true,
	"boolean_operator":       true,
	"for_in_clause":          true,
	"if_clause":              true,
	"assert_statement":       true,
}

func isDefinitionKind(kind string) bool {
	return kind == "function_definition" || kind == "class_definition"
}

// cyclomaticComplexity computes 1 + branch count over the definition's
// own subtree. Nested function and class definitions are excluded:
// their branches belong to the nested definition, which gets its own
// fact.
func cyclomaticComplexity(def *tree_sitter.Node) int {
	return 1 + countInOwnSubtree(def, def, func(kind string) bool {
		return branchNodeKinds[kind]
	})
}

// returnStatementCount counts return statements belonging to a
// definition, again excluding nested definitions.
func returnStatementCount(def *tree_sitter.Node) int {
	return countInOwnSubtree(def, def, func(kind string) bool {
		return kind == "return_statement"
	})
}

func countInOwnSubtree(node, root *tree_sitter.Node, match func(kind string) bool) int {
	if node == nil {
		return 0
	}
	if node != root && isDefinitionKind(node.Kind()) {
		return 0
	}
	count := 0
	if node != root && match(node.Kind()) {
		count++
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		count += countInOwnSubtree(node.Child(i), root, match)
	}
	return count
}
