package analysis

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codescore/internal/config"
	"github.com/standardbeagle/codescore/internal/parser"
	"github.com/standardbeagle/codescore/internal/types"
)

const structuralBackendName = "structural"

// StructuralBackend parses each file into a syntax tree and extracts
// structural facts: packages, classes, functions, variables, imports
// and cyclomatic complexity.
type StructuralBackend struct {
	workers int
}

// NewStructuralBackend creates the structural analyzer backend
func NewStructuralBackend(cfg *config.Config) *StructuralBackend {
	return &StructuralBackend{workers: cfg.FileWorkerCount()}
}

func (b *StructuralBackend) Name() string { return structuralBackendName }

func (b *StructuralBackend) Description() string {
	return "Syntax-tree analysis of packages, classes, functions, variables and imports"
}

func (b *StructuralBackend) Capabilities() []Capability {
	return []Capability{CapabilityStructure, CapabilityComplexity}
}

func (b *StructuralBackend) IsAvailable() bool { return true }

// Analyze parses files in parallel with bounded workers. Each file
// produces its own result object; results are merged in input order so
// fact emission stays deterministic. A file that fails to parse
// contributes one error entry and zero facts.
func (b *StructuralBackend) Analyze(ctx context.Context, files []types.SourceFile) (*types.AnalysisResult, error) {
	result := types.NewAnalysisResult()
	if len(files) == 0 {
		return result, nil
	}

	outs := make([]*types.AnalysisResult, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range files {
		g.Go(func() error {
			outs[i] = analyzeSourceFile(&files[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outs {
		result.Merge(out)
	}
	result.Packages = buildPackageFacts(result)

	totalComplexity := 0
	for _, fn := range result.Functions {
		totalComplexity += fn.Complexity
	}
	if len(result.Functions) > 0 {
		result.Metrics["structural.avg_complexity"] = float64(totalComplexity) / float64(len(result.Functions))
	}
	result.Metrics["structural.files_parsed"] = float64(len(files) - len(result.Errors))
	result.Metrics["structural.parse_failures"] = float64(len(result.Errors))

	return result, nil
}

// analyzeSourceFile parses one file and walks its tree. Each worker
// owns its parser because tree-sitter parsers are not safe for
// concurrent use.
func analyzeSourceFile(file *types.SourceFile) *types.AnalysisResult {
	out := types.NewAnalysisResult()
	out.Files = append(out.Files, *file)

	p, err := parser.New()
	if err != nil {
		out.Errors = append(out.Errors, types.AnalysisError{
			Backend: structuralBackendName, FilePath: file.Path, Message: err.Error(),
		})
		return out
	}
	defer p.Close()

	content := []byte(file.Content)
	tree, err := p.Parse(file.Path, content)
	if err != nil {
		out.Errors = append(out.Errors, types.AnalysisError{
			Backend: structuralBackendName, FilePath: file.Path, Message: err.Error(),
		})
		return out
	}
	defer tree.Close()

	w := newFileWalker(file, content, out)
	w.walk(tree.RootNode(), nil)
	return out
}

type scopeKind int

const (
	scopeClass scopeKind = iota
	scopeFunction
)

type scopeFrame struct {
	kind scopeKind
	name string
}

// fileWalker traverses one file's syntax tree. The explicit context
// stack builds qualified names and decides variable scope; facts are
// emitted in source order.
type fileWalker struct {
	file       *types.SourceFile
	content    []byte
	moduleName string
	out        *types.AnalysisResult
	stack      []scopeFrame
	classDepth map[string]int
	seenVars   map[string]bool
}

func newFileWalker(file *types.SourceFile, content []byte, out *types.AnalysisResult) *fileWalker {
	return &fileWalker{
		file:       file,
		content:    content,
		moduleName: strings.TrimSuffix(file.Name, filepath.Ext(file.Name)),
		out:        out,
		classDepth: make(map[string]int),
		seenVars:   make(map[string]bool),
	}
}

func (w *fileWalker) walk(node *tree_sitter.Node, decorators []string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "decorated_definition":
		w.visitDecorated(node)
	case "class_definition":
		w.visitClass(node, decorators)
	case "function_definition":
		w.visitFunction(node, decorators)
	case "import_statement":
		w.visitImport(node)
	case "import_from_statement":
		w.visitImportFrom(node)
	case "expression_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child != nil && child.Kind() == "assignment" {
				w.visitAssignment(child)
			}
		}
	default:
		for i := uint(0); i < node.ChildCount(); i++ {
			w.walk(node.Child(i), nil)
		}
	}
}

func (w *fileWalker) visitDecorated(node *tree_sitter.Node) {
	var decorators []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "decorator" {
			decorators = append(decorators, decoratorName(child, w.content))
		}
	}
	if def := node.ChildByFieldName("definition"); def != nil {
		w.walk(def, decorators)
	}
}

func (w *fileWalker) visitClass(node *tree_sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, w.content)
	body := node.ChildByFieldName("body")

	fact := types.ClassFact{
		Name:          name,
		QualifiedName: w.qualified(name),
		FilePath:      w.file.Path,
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Decorators:    decorators,
		HasDocstring:  blockHasDocstring(body),
	}

	metaclass := ""
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := uint(0); i < superclasses.NamedChildCount(); i++ {
			arg := superclasses.NamedChild(i)
			if arg == nil {
				continue
			}
			text := parser.NodeText(arg, w.content)
			if arg.Kind() == "keyword_argument" {
				if strings.HasPrefix(text, "metaclass=") {
					metaclass = strings.TrimPrefix(text, "metaclass=")
				}
				continue
			}
			fact.BaseClasses = append(fact.BaseClasses, text)
		}
	}
	fact.InheritanceDepth = w.inheritanceDepth(name, fact.BaseClasses)

	w.countClassMembers(body, &fact)

	for _, dec := range decorators {
		if lastComponent(dec) == "dataclass" {
			fact.IsDataclass = true
		}
	}
	if metaclass == "ABCMeta" || strings.HasSuffix(metaclass, ".ABCMeta") {
		fact.IsAbstract = true
	}
	for _, base := range fact.BaseClasses {
		if base == "ABC" || strings.HasSuffix(base, ".ABC") {
			fact.IsAbstract = true
		}
	}

	w.out.Classes = append(w.out.Classes, fact)

	w.stack = append(w.stack, scopeFrame{kind: scopeClass, name: name})
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			w.walk(body.Child(i), nil)
		}
	}
	w.stack = w.stack[:len(w.stack)-1]
}

// countClassMembers scans the class body's direct statements for
// method kinds and abstractmethod markers.
func (w *fileWalker) countClassMembers(body *tree_sitter.Node, fact *types.ClassFact) {
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil {
			continue
		}
		def := stmt
		var decorators []string
		if stmt.Kind() == "decorated_definition" {
			for j := uint(0); j < stmt.ChildCount(); j++ {
				if c := stmt.Child(j); c != nil && c.Kind() == "decorator" {
					decorators = append(decorators, decoratorName(c, w.content))
				}
			}
			def = stmt.ChildByFieldName("definition")
		}
		if def == nil || def.Kind() != "function_definition" {
			continue
		}
		switch kindFromDecorators(decorators, true) {
		case types.FunctionKindClassMethod:
			fact.ClassMethodCount++
		case types.FunctionKindStaticMethod:
			fact.StaticMethods++
		case types.FunctionKindProperty:
			fact.PropertyCount++
		default:
			fact.MethodCount++
		}
		for _, dec := range decorators {
			if lastComponent(dec) == "abstractmethod" {
				fact.IsAbstract = true
			}
		}
	}
}

// inheritanceDepth is 1 + the deepest known base, computed from
// classes seen earlier in this file. Classes deriving only from object
// (or nothing) have depth 0; unknown bases count as depth 0.
func (w *fileWalker) inheritanceDepth(name string, bases []string) int {
	depth := 0
	for _, base := range bases {
		if base == "object" {
			continue
		}
		baseDepth := w.classDepth[base]
		if baseDepth+1 > depth {
			depth = baseDepth + 1
		}
	}
	w.classDepth[name] = depth
	return depth
}

func (w *fileWalker) visitFunction(node *tree_sitter.Node, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, w.content)
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1
	body := node.ChildByFieldName("body")

	paramCount, typedParams := countParameters(node.ChildByFieldName("parameters"))
	complexity := cyclomaticComplexity(node)

	fact := types.FunctionFact{
		Name:               name,
		QualifiedName:      w.qualified(name),
		Kind:               kindFromDecorators(decorators, w.inClass()),
		IsAsync:            isAsyncDefinition(node),
		FilePath:           w.file.Path,
		StartLine:          startLine,
		EndLine:            endLine,
		ParameterCount:     paramCount,
		ReturnCount:        returnStatementCount(node),
		Complexity:         complexity,
		Tier:               types.TierForComplexity(complexity),
		HasDocstring:       blockHasDocstring(body),
		HasTypeAnnotations: typedParams || node.ChildByFieldName("return_type") != nil,
		TooManyParameters:  paramCount > types.MaxParameterCount,
		TooLong:            endLine-startLine+1 > types.MaxFunctionLines,
	}
	w.out.Functions = append(w.out.Functions, fact)

	w.stack = append(w.stack, scopeFrame{kind: scopeFunction, name: name})
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			w.walk(body.Child(i), nil)
		}
	}
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *fileWalker) visitImport(node *tree_sitter.Node) {
	line := int(node.StartPosition().Row) + 1
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			module := parser.NodeText(child, w.content)
			w.emitImport(types.ImportFact{Module: module, Line: line})
		case "aliased_import":
			module := parser.NodeText(child.ChildByFieldName("name"), w.content)
			alias := parser.NodeText(child.ChildByFieldName("alias"), w.content)
			w.emitImport(types.ImportFact{Module: module, Alias: alias, Line: line})
		}
	}
}

func (w *fileWalker) visitImportFrom(node *tree_sitter.Node) {
	line := int(node.StartPosition().Row) + 1
	moduleNode := node.ChildByFieldName("module_name")
	module := parser.NodeText(moduleNode, w.content)

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || (moduleNode != nil && child.StartByte() == moduleNode.StartByte()) {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			w.emitImport(types.ImportFact{Module: module, Symbol: parser.NodeText(child, w.content), Line: line})
		case "aliased_import":
			symbol := parser.NodeText(child.ChildByFieldName("name"), w.content)
			alias := parser.NodeText(child.ChildByFieldName("alias"), w.content)
			w.emitImport(types.ImportFact{Module: module, Symbol: symbol, Alias: alias, Line: line})
		case "wildcard_import":
			w.emitImport(types.ImportFact{Module: module, Symbol: "*", IsWildcard: true, Line: line})
		}
	}
}

func (w *fileWalker) emitImport(fact types.ImportFact) {
	fact.FilePath = w.file.Path
	fact.Classification = classifyImport(fact.Module)
	w.out.Imports = append(w.out.Imports, fact)
}

func (w *fileWalker) visitAssignment(assign *tree_sitter.Node) {
	left := assign.ChildByFieldName("left")
	if left == nil {
		return
	}
	switch left.Kind() {
	case "identifier":
		w.emitVariable(left)
	case "pattern_list":
		for i := uint(0); i < left.NamedChildCount(); i++ {
			if target := left.NamedChild(i); target != nil && target.Kind() == "identifier" {
				w.emitVariable(target)
			}
		}
	}
}

func (w *fileWalker) emitVariable(ident *tree_sitter.Node) {
	name := parser.NodeText(ident, w.content)
	qualified := w.qualified(name)
	if w.seenVars[qualified] {
		return
	}
	w.seenVars[qualified] = true

	scope := w.currentScope()
	kind := classifyVariable(name, scope)
	w.out.Variables = append(w.out.Variables, types.VariableFact{
		Name:          name,
		QualifiedName: qualified,
		FilePath:      w.file.Path,
		Line:          int(ident.StartPosition().Row) + 1,
		Kind:          kind,
		Scope:         scope,
		FollowsNaming: followsNamingConvention(name, kind),
	})
}

// qualified joins [module, enclosing scopes..., name] with dots
func (w *fileWalker) qualified(name string) string {
	parts := make([]string, 0, len(w.stack)+2)
	parts = append(parts, w.moduleName)
	for _, frame := range w.stack {
		parts = append(parts, frame.name)
	}
	parts = append(parts, name)
	return strings.Join(parts, ".")
}

func (w *fileWalker) inClass() bool {
	return len(w.stack) > 0 && w.stack[len(w.stack)-1].kind == scopeClass
}

func (w *fileWalker) currentScope() types.VariableScope {
	if len(w.stack) == 0 {
		return types.ScopeModule
	}
	if w.stack[len(w.stack)-1].kind == scopeFunction {
		return types.ScopeFunction
	}
	return types.ScopeClass
}

// decoratorName extracts "foo.bar" from "@foo.bar(arg)"
func decoratorName(decorator *tree_sitter.Node, content []byte) string {
	text := strings.TrimPrefix(parser.NodeText(decorator, content), "@")
	if idx := strings.IndexByte(text, '('); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func lastComponent(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx != -1 {
		return name[idx+1:]
	}
	return name
}

// kindFromDecorators resolves the function kind from its decorators
// and whether the immediate enclosing scope is a class body.
func kindFromDecorators(decorators []string, inClass bool) types.FunctionKind {
	for _, dec := range decorators {
		switch lastComponent(dec) {
		case "classmethod":
			return types.FunctionKindClassMethod
		case "staticmethod":
			return types.FunctionKindStaticMethod
		case "property", "cached_property", "setter", "getter", "deleter":
			return types.FunctionKindProperty
		}
	}
	if inClass {
		return types.FunctionKindMethod
	}
	return types.FunctionKindFunction
}

func isAsyncDefinition(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "async" {
			return true
		}
		if child.Kind() == "def" {
			break
		}
	}
	return false
}

func countParameters(params *tree_sitter.Node) (count int, typed bool) {
	if params == nil {
		return 0, false
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}
		switch param.Kind() {
		case "identifier", "default_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			count++
		case "typed_parameter", "typed_default_parameter":
			count++
			typed = true
		}
	}
	return count, typed
}

// blockHasDocstring reports whether a definition body starts with a
// string expression
func blockHasDocstring(body *tree_sitter.Node) bool {
	if body == nil || body.NamedChildCount() == 0 {
		return false
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" || first.NamedChildCount() == 0 {
		return false
	}
	expr := first.NamedChild(0)
	return expr != nil && expr.Kind() == "string"
}

type packageAggregate struct {
	fact            types.PackageFact
	complexityTotal int
}

// buildPackageFacts finalizes per-directory aggregates once every file
// has been walked
func buildPackageFacts(result *types.AnalysisResult) []types.PackageFact {
	aggregates := make(map[string]*packageAggregate)
	get := func(path string) *packageAggregate {
		dir := filepath.ToSlash(filepath.Dir(path))
		agg, ok := aggregates[dir]
		if !ok {
			name := filepath.Base(dir)
			if name == "." || name == "/" {
				name = "root"
			}
			agg = &packageAggregate{fact: types.PackageFact{Name: name, Path: dir}}
			aggregates[dir] = agg
		}
		return agg
	}

	for _, file := range result.Files {
		agg := get(file.Path)
		agg.fact.FileCount++
		agg.fact.TotalLines += file.TotalLines()
	}
	for _, fn := range result.Functions {
		agg := get(fn.FilePath)
		agg.fact.FunctionCount++
		agg.complexityTotal += fn.Complexity
		if fn.Complexity > agg.fact.MaxComplexity {
			agg.fact.MaxComplexity = fn.Complexity
		}
	}
	for _, class := range result.Classes {
		get(class.FilePath).fact.ClassCount++
	}

	paths := make([]string, 0, len(aggregates))
	for path := range aggregates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	facts := make([]types.PackageFact, 0, len(paths))
	for _, path := range paths {
		agg := aggregates[path]
		if agg.fact.FunctionCount > 0 {
			agg.fact.AvgComplexity = float64(agg.complexityTotal) / float64(agg.fact.FunctionCount)
		}
		facts = append(facts, agg.fact)
	}
	return facts
}
