package analysis

import (
	"strings"
	"unicode"

	"github.com/standardbeagle/codescore/internal/types"
)

// classifyVariable derives kind and scope from the enclosing context:
// inside a function the binding is local; inside a class body it is an
// instance variable when underscore-prefixed, otherwise a class
// variable; at module scope all-uppercase names are constants and the
// rest are globals.
func classifyVariable(name string, scope types.VariableScope) types.VariableKind {
	switch scope {
	case types.ScopeFunction:
		return types.VariableKindLocal
	case types.ScopeClass:
		if strings.HasPrefix(name, "_") {
			return types.VariableKindInstance
		}
		return types.VariableKindClass
	default:
		if isAllUpper(name) {
			return types.VariableKindConstant
		}
		return types.VariableKindGlobal
	}
}

// followsNamingConvention checks the naming rule for each variable
// kind: constants use UPPER_SNAKE (or are very short), class and
// instance variables are lower-cased or underscore-prefixed, and
// everything else uses lower_snake.
func followsNamingConvention(name string, kind types.VariableKind) bool {
	switch kind {
	case types.VariableKindConstant:
		return isAllUpper(name) || len(name) <= 3
	case types.VariableKindClass, types.VariableKindInstance:
		return name == strings.ToLower(name) || strings.HasPrefix(name, "_")
	default:
		return name == strings.ToLower(name) || strings.Contains(name, "_")
	}
}

// isAllUpper reports whether every cased rune in the name is upper
// case. Digits and underscores are neutral.
func isAllUpper(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
