package types

// SourceFile is one discovered source file. Immutable once read.
type SourceFile struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Content      string `json:"-"`
	CodeLines    int    `json:"code_lines"`
	CommentLines int    `json:"comment_lines"`
	BlankLines   int    `json:"blank_lines"`
}

// TotalLines returns the physical line count of the file.
func (f SourceFile) TotalLines() int {
	return f.CodeLines + f.CommentLines + f.BlankLines
}

// ComplexityTier buckets a cyclomatic complexity value
type ComplexityTier string

const (
	TierLow      ComplexityTier = "low"       // <= 5
	TierMedium   ComplexityTier = "medium"    // <= 10
	TierHigh     ComplexityTier = "high"      // <= 20
	TierVeryHigh ComplexityTier = "very_high" // > 20
)

// TierForComplexity maps a cyclomatic complexity value to its tier
func TierForComplexity(complexity int) ComplexityTier {
	switch {
	case complexity <= 5:
		return TierLow
	case complexity <= 10:
		return TierMedium
	case complexity <= 20:
		return TierHigh
	default:
		return TierVeryHigh
	}
}

// FunctionKind categorizes how a callable is defined
type FunctionKind string

const (
	FunctionKindFunction     FunctionKind = "function"
	FunctionKindMethod       FunctionKind = "method"
	FunctionKindClassMethod  FunctionKind = "classmethod"
	FunctionKindStaticMethod FunctionKind = "staticmethod"
	FunctionKindProperty     FunctionKind = "property"
)

// Thresholds for function-shape warnings
const (
	MaxParameterCount = 7
	MaxFunctionLines  = 50
)

// FunctionFact describes one function or method definition
type FunctionFact struct {
	Name               string         `json:"name"`
	QualifiedName      string         `json:"qualified_name"`
	Kind               FunctionKind   `json:"kind"`
	IsAsync            bool           `json:"is_async"`
	FilePath           string         `json:"file_path"`
	StartLine          int            `json:"start_line"`
	EndLine            int            `json:"end_line"`
	ParameterCount     int            `json:"parameter_count"`
	ReturnCount        int            `json:"return_count"`
	Complexity         int            `json:"complexity"`
	Tier               ComplexityTier `json:"tier"`
	HasDocstring       bool           `json:"has_docstring"`
	HasTypeAnnotations bool           `json:"has_type_annotations"`
	TooManyParameters  bool           `json:"too_many_parameters"`
	TooLong            bool           `json:"too_long"`
}

// ClassFact describes one class definition
type ClassFact struct {
	Name             string   `json:"name"`
	QualifiedName    string   `json:"qualified_name"`
	FilePath         string   `json:"file_path"`
	StartLine        int      `json:"start_line"`
	EndLine          int      `json:"end_line"`
	MethodCount      int      `json:"method_count"`
	PropertyCount    int      `json:"property_count"`
	ClassMethodCount int      `json:"classmethod_count"`
	StaticMethods    int      `json:"staticmethod_count"`
	BaseClasses      []string `json:"base_classes,omitempty"`
	InheritanceDepth int      `json:"inheritance_depth"`
	HasDocstring     bool     `json:"has_docstring"`
	Decorators       []string `json:"decorators,omitempty"`
	IsAbstract       bool     `json:"is_abstract"`
	IsDataclass      bool     `json:"is_dataclass"`
}

// VariableKind categorizes a variable binding
type VariableKind string

const (
	VariableKindConstant VariableKind = "constant"
	VariableKindGlobal   VariableKind = "global"
	VariableKindClass    VariableKind = "class"
	VariableKindInstance VariableKind = "instance"
	VariableKindLocal    VariableKind = "local"
)

// VariableScope identifies the enclosing scope of a variable
type VariableScope string

const (
	ScopeModule   VariableScope = "module"
	ScopeClass    VariableScope = "class"
	ScopeFunction VariableScope = "function"
)

// VariableFact describes one variable binding
type VariableFact struct {
	Name          string        `json:"name"`
	QualifiedName string        `json:"qualified_name"`
	FilePath      string        `json:"file_path"`
	Line          int           `json:"line"`
	Kind          VariableKind  `json:"kind"`
	Scope         VariableScope `json:"scope"`
	FollowsNaming bool          `json:"follows_naming_convention"`
}

// ImportClass categorizes where an imported module comes from
type ImportClass string

const (
	ImportStandard   ImportClass = "standard"
	ImportThirdParty ImportClass = "third_party"
	ImportLocal      ImportClass = "local"
	ImportRelative   ImportClass = "relative"
)

// ImportFact describes one imported module or symbol
type ImportFact struct {
	Module         string      `json:"module"`
	Symbol         string      `json:"symbol,omitempty"`
	Alias          string      `json:"alias,omitempty"`
	Classification ImportClass `json:"classification"`
	IsWildcard     bool        `json:"is_wildcard"`
	FilePath       string      `json:"file_path"`
	Line           int         `json:"line"`
}

// PackageFact aggregates structural metrics for one package (directory).
// Finalized once all of the package's files have been analyzed.
type PackageFact struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	FileCount     int     `json:"file_count"`
	TotalLines    int     `json:"total_lines"`
	FunctionCount int     `json:"function_count"`
	ClassCount    int     `json:"class_count"`
	AvgComplexity float64 `json:"avg_complexity"`
	MaxComplexity int     `json:"max_complexity"`
}
