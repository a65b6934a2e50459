package compiler

import (
	"fmt"
	"nonek/pkg/ast"
	"nonek/pkg/parser"
	"nonek/pkg/token"
	"strings"
)

// Header opens every generated module.
const Header = "### nonek ###\n\nimport random\nimport math\n\n"

// mainScope is the key of the top-level (Execution) scope.
const mainScope = ""

type SymbolTable struct {
	Name           string
	store          map[string]Symbol
	numDefinitions int
}

type Symbol struct {
	Name  string
	Type  string
	Index int
}

func NewSymbolTable(name string) *SymbolTable {
	return &SymbolTable{
		Name:  name,
		store: make(map[string]Symbol),
	}
}

// Define records name with its declared type. It reports false if name is
// already defined in this table.
func (s *SymbolTable) Define(name, typ string) (Symbol, bool) {
	if existing, ok := s.store[name]; ok {
		return existing, false
	}
	symbol := Symbol{Name: name, Type: typ, Index: s.numDefinitions}
	s.store[name] = symbol
	s.numDefinitions++
	return symbol, true
}

func (s *SymbolTable) Resolve(name string) (Symbol, bool) {
	obj, ok := s.store[name]
	return obj, ok
}

// Len is the number of symbols defined so far.
func (s *SymbolTable) Len() int { return s.numDefinitions }

// Signature is what a call to a user function is checked against.
type Signature struct {
	ArgTypes   []string
	ArgNames   []string
	ArgCount   int
	ReturnType string
}

type Options struct {
	// Indent is written once per nesting level. Defaults to a tab.
	Indent string
	// LenientOperations makes unknown library operations emit nothing
	// instead of failing with ErrUnknownOperation.
	LenientOperations bool
	// FoldConstants replaces integer arithmetic on literals with its value.
	FoldConstants bool
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = "\t"
	}
	return o
}

// Generator translates a Program into Python source, checking scopes, imports
// and call signatures as it goes. A Generator serves one run at a time; Generate
// resets it first.
type Generator struct {
	opts Options

	body  strings.Builder
	out   *strings.Builder // current sink: body, or a scratch buffer while rendering an expression
	depth int

	scope      *SymbolTable
	scopes     map[string]*SymbolTable
	signatures map[string]*Signature
	imported   map[string]bool
	defined    []string

	// skipZero suppresses the zero value of a declaration whose initializer follows.
	skipZero bool
}

func New(opts Options) *Generator {
	g := &Generator{opts: opts.withDefaults()}
	g.Reset()
	return g
}

// Reset discards all state from a previous run. Options are kept.
func (g *Generator) Reset() {
	g.body.Reset()
	g.out = &g.body
	g.depth = 0
	g.scopes = map[string]*SymbolTable{mainScope: NewSymbolTable("main")}
	g.scope = g.scopes[mainScope]
	g.signatures = make(map[string]*Signature)
	g.imported = make(map[string]bool)
	g.defined = g.defined[:0]
	g.skipZero = false
}

// Compile parses input and generates Python for it.
func Compile(input string, opts Options) (string, error) {
	program, err := parser.Parse(input)
	if err != nil {
		return "", err
	}
	return New(opts).Generate(program)
}

// Generate returns the complete Python module for program. On error no
// partial output is returned.
func (g *Generator) Generate(program *ast.Program) (string, error) {
	g.Reset()
	if err := ast.Walk(g, program); err != nil {
		return "", err
	}
	return Header + g.body.String(), nil
}

// Imported reports whether lib was imported during the last run.
func (g *Generator) Imported(lib string) bool { return g.imported[lib] }

// Signature returns the recorded signature of a user function.
func (g *Generator) Signature(name string) (Signature, bool) {
	sig, ok := g.signatures[name]
	if !ok {
		return Signature{}, false
	}
	return *sig, true
}

// Functions lists user functions in definition order.
func (g *Generator) Functions() []string { return append([]string(nil), g.defined...) }

// Scope returns the symbol table of a function, or of the top level for "".
func (g *Generator) Scope(name string) (*SymbolTable, bool) {
	s, ok := g.scopes[name]
	return s, ok
}

func (g *Generator) line(format string, args ...interface{}) {
	g.out.WriteString(strings.Repeat(g.opts.Indent, g.depth))
	fmt.Fprintf(g.out, format, args...)
	g.out.WriteByte('\n')
}

// render walks an expression into a scratch buffer and returns its text.
func (g *Generator) render(node ast.Node) (string, error) {
	saved := g.out
	var scratch strings.Builder
	g.out = &scratch
	err := ast.Walk(g, node)
	g.out = saved
	return scratch.String(), err
}

// statements emits a statement sequence at the current depth.
func (g *Generator) statements(nodes []ast.Node) error {
	for i, node := range nodes {
		if decl, ok := node.(*ast.VarDecl); ok && i+1 < len(nodes) {
			if assign, ok := nodes[i+1].(*ast.Assign); ok && assign.Var.Name == decl.Var.Name {
				g.skipZero = true
			}
		}

		if call, ok := node.(*ast.FunctionCall); ok {
			text, err := g.render(call)
			if err != nil {
				return err
			}
			if text != "" {
				g.line("%s", text)
			}
			continue
		}

		if err := ast.Walk(g, node); err != nil {
			return err
		}
	}
	return nil
}

// block emits a nested body, writing pass if it produced no lines.
func (g *Generator) block(emit func() error) error {
	g.depth++
	mark := g.out.Len()
	if err := emit(); err != nil {
		return err
	}
	if g.out.Len() == mark {
		g.line("pass")
	}
	g.depth--
	return nil
}

func (g *Generator) VisitProgram(n *ast.Program) error {
	return g.statements(n.Sections)
}

func (g *Generator) VisitLibraryImport(n *ast.LibraryImport) error {
	g.imported[n.Name] = true
	return nil
}

func (g *Generator) VisitFunctionImpl(n *ast.FunctionImpl) error {
	if _, ok := g.signatures[n.Name]; ok {
		return newError(ErrDuplicateFunction, n.Line(), "function %s is already defined", n.Name)
	}

	g.signatures[n.Name] = &Signature{ReturnType: n.Return.Type.Name}
	g.defined = append(g.defined, n.Name)
	g.scope = NewSymbolTable(n.Name)
	g.scopes[n.Name] = g.scope
	defer func() { g.scope = g.scopes[mainScope] }()

	if err := ast.Walk(g, n.Params); err != nil {
		return err
	}

	g.line("def %s(%s):", n.Name, strings.Join(g.signatures[n.Name].ArgNames, ", "))
	err := g.block(func() error {
		if err := ast.Walk(g, n.Body); err != nil {
			return err
		}
		return ast.Walk(g, n.Return)
	})
	if err != nil {
		return err
	}

	g.out.WriteByte('\n')
	return nil
}

// VisitArgumentList registers the parameters of the function being defined.
func (g *Generator) VisitArgumentList(n *ast.ArgumentList) error {
	sig := g.signatures[g.scope.Name]
	for _, param := range n.Params {
		if err := g.declare(param); err != nil {
			return err
		}
		sig.ArgTypes = append(sig.ArgTypes, param.Type.Name)
		sig.ArgNames = append(sig.ArgNames, pyName(param.Var.Name))
		sig.ArgCount++
	}
	return nil
}

func (g *Generator) VisitReturn(n *ast.Return) error {
	expected := n.Type.Name
	if n.Value == nil {
		if expected != "VOID" {
			return &SemanticError{
				Kind:     ErrReturnTypeMismatch,
				Line:     n.Line(),
				Msg:      fmt.Sprintf("function %s must return %s, but has no RETURN", g.scope.Name, expected),
				Expected: expected,
				Found:    "VOID",
			}
		}
		return nil
	}

	found, err := g.typeOf(n.Value)
	if err != nil {
		return err
	}
	if found != expected {
		return &SemanticError{
			Kind:     ErrReturnTypeMismatch,
			Line:     n.Line(),
			Msg:      fmt.Sprintf("in function %s expected return type %s, but %s found", g.scope.Name, expected, found),
			Expected: expected,
			Found:    found,
		}
	}

	value, err := g.render(n.Value)
	if err != nil {
		return err
	}
	g.line("return %s", value)
	return nil
}

func (g *Generator) VisitFunctionCall(n *ast.FunctionCall) error {
	if n.Library == This {
		return g.userCall(n)
	}

	if !g.imported[n.Library] {
		return newError(ErrUnimportedLibrary, n.Line(), "library %s is not imported", n.Library)
	}

	op, ok := lookupBuiltin(n.Library, n.Name)
	if !ok {
		if g.opts.LenientOperations {
			return nil
		}
		return newError(ErrUnknownOperation, n.Line(), "library %s has no operation %s", n.Library, n.Name)
	}
	if len(n.Args) != op.arity {
		return &SemanticError{
			Kind:     ErrArityMismatch,
			Line:     n.Line(),
			Msg:      fmt.Sprintf("function %s.%s expects %d arguments, but %d given", n.Library, n.Name, op.arity, len(n.Args)),
			Expected: fmt.Sprint(op.arity),
			Found:    fmt.Sprint(len(n.Args)),
		}
	}

	args, err := g.renderArgs(n.Args)
	if err != nil {
		return err
	}
	g.out.WriteString(op.expand(args))
	return nil
}

func (g *Generator) userCall(n *ast.FunctionCall) error {
	sig, ok := g.signatures[n.Name]
	if !ok {
		return newError(ErrUndefinedFunction, n.Line(), "function %s is not defined", n.Name)
	}
	if len(n.Args) != sig.ArgCount {
		return &SemanticError{
			Kind:     ErrArityMismatch,
			Line:     n.Line(),
			Msg:      fmt.Sprintf("function %s expects %d arguments, but %d given", n.Name, sig.ArgCount, len(n.Args)),
			Expected: fmt.Sprint(sig.ArgCount),
			Found:    fmt.Sprint(len(n.Args)),
		}
	}

	for i, arg := range n.Args {
		found, err := g.typeOf(arg)
		if err != nil {
			return err
		}
		if found != sig.ArgTypes[i] {
			return &SemanticError{
				Kind: ErrTypeMismatch,
				Line: n.Line(),
				Msg: fmt.Sprintf("in function %s argument %d expects type %s, but %s given",
					n.Name, i+1, sig.ArgTypes[i], found),
				Expected: sig.ArgTypes[i],
				Found:    found,
			}
		}
	}

	args, err := g.renderArgs(n.Args)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "%s(%s)", n.Name, strings.Join(args, ", "))
	return nil
}

func (g *Generator) renderArgs(nodes []ast.Node) ([]string, error) {
	args := make([]string, 0, len(nodes))
	for _, node := range nodes {
		text, err := g.render(node)
		if err != nil {
			return nil, err
		}
		args = append(args, text)
	}
	return args, nil
}

// typeOf is the source-level type of a call argument or returned value.
func (g *Generator) typeOf(node ast.Node) (string, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return "INT", nil
	case *ast.StringLiteral:
		return "STRING", nil
	case *ast.VarRef:
		if !n.IsVariable() {
			return "STRING", nil
		}
		symbol, ok := g.scope.Resolve(n.Name)
		if !ok {
			return "", g.undefined(n)
		}
		return symbol.Type, nil
	}
	return "unknown", nil
}

func (g *Generator) VisitConditional(n *ast.Conditional) error {
	cond, err := g.render(n.Condition)
	if err != nil {
		return err
	}
	g.line("if %s:", cond)
	return g.block(func() error { return ast.Walk(g, n.Body) })
}

func (g *Generator) VisitLoop(n *ast.Loop) error {
	cond, err := g.render(n.Condition)
	if err != nil {
		return err
	}
	g.line("while %s:", cond)
	return g.block(func() error { return ast.Walk(g, n.Body) })
}

func (g *Generator) VisitStatementList(n *ast.StatementList) error {
	return g.statements(n.Statements)
}

func (g *Generator) VisitVarDecl(n *ast.VarDecl) error {
	skip := g.skipZero
	g.skipZero = false

	if err := g.declare(n); err != nil {
		return err
	}
	if !skip {
		g.line("%s = %s", pyName(n.Var.Name), zeroValue(n.Type.Name))
	}
	return nil
}

func (g *Generator) declare(n *ast.VarDecl) error {
	if _, ok := g.scope.Define(n.Var.Name, n.Type.Name); !ok {
		return newError(ErrDuplicateVariable, n.Var.Line(),
			"variable %s is already defined in %s", n.Var.Name, g.scope.Name)
	}
	return nil
}

func (g *Generator) VisitAssign(n *ast.Assign) error {
	target, err := g.render(n.Var)
	if err != nil {
		return err
	}
	value, err := g.render(n.Value)
	if err != nil {
		return err
	}

	symbol, _ := g.scope.Resolve(n.Var.Name)
	if _, isNum := n.Value.(*ast.NumberLiteral); isNum && symbol.Type == "INT" {
		value = "int(" + value + ")"
	}

	g.line("%s = %s", target, value)
	return nil
}

func (g *Generator) VisitTypeRef(*ast.TypeRef) error { return nil }

func (g *Generator) VisitVarRef(n *ast.VarRef) error {
	if !n.IsVariable() {
		g.out.WriteString(pyString(n.Name))
		return nil
	}
	if _, ok := g.scope.Resolve(n.Name); !ok {
		return g.undefined(n)
	}
	g.out.WriteString(pyName(n.Name))
	return nil
}

func (g *Generator) undefined(n *ast.VarRef) error {
	return newError(ErrUndefinedVariable, n.Line(), "variable %s is not defined in %s", n.Name, g.scope.Name)
}

func (g *Generator) VisitStringLiteral(n *ast.StringLiteral) error {
	g.out.WriteString(pyString(n.Value))
	return nil
}

func (g *Generator) VisitBinaryOp(n *ast.BinaryOp) error {
	if g.opts.FoldConstants {
		if value, ok := foldConstants(n); ok {
			fmt.Fprint(g.out, value)
			return nil
		}
	}

	left, err := g.render(n.Left)
	if err != nil {
		return err
	}
	right, err := g.render(n.Right)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "(%s %s %s)", left, pyOperator(n.Op), right)
	return nil
}

func (g *Generator) VisitUnaryOp(n *ast.UnaryOp) error {
	operand, err := g.render(n.Operand)
	if err != nil {
		return err
	}
	if n.Op.Type == token.NOT {
		g.out.WriteString("not " + operand)
		return nil
	}
	g.out.WriteString(n.Op.Literal + operand)
	return nil
}

func (g *Generator) VisitNumberLiteral(n *ast.NumberLiteral) error {
	g.out.WriteString(n.Literal)
	return nil
}

func pyName(variable string) string {
	return strings.TrimPrefix(variable, string(token.Sigil))
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func pyString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

func pyOperator(op token.Token) string {
	switch op.Type {
	case token.AND:
		return "and"
	case token.OR:
		return "or"
	case token.DIV:
		return "//"
	case token.MOD:
		return "%"
	}
	return op.Literal
}

func zeroValue(typ string) string {
	switch typ {
	case "INT":
		return "0"
	case "FLOAT":
		return "0.0"
	case "STRING":
		return "''"
	case "ARRAY":
		return "[]"
	case "BOOL":
		return "False"
	}
	return "None"
}
