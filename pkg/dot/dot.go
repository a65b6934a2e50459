// Package dot renders a syntax tree as a Graphviz digraph. It is purely
// structural: any tree the parser accepts can be exported.
package dot

import (
	"fmt"
	"nonek/pkg/ast"
	"nonek/pkg/parser"
	"strings"
)

const (
	Header = "digraph astgraph {\n" +
		"  node [shape=box, fontsize=12, fontname=\"Courier\", height=.1];\n" +
		"  ranksep=.3;\n" +
		"  edge [arrowsize=.5]\n\n"
	Footer = "}\n"
)

// Exporter numbers nodes from 1 in pre-order. Each edge is written after the
// child's whole subtree.
type Exporter struct {
	body strings.Builder
	next int
	last int // id of the most recently completed node
}

func New() *Exporter {
	e := &Exporter{}
	e.Reset()
	return e
}

func (e *Exporter) Reset() {
	e.body.Reset()
	e.next = 1
	e.last = 0
}

// Export returns the complete graph document for program.
func (e *Exporter) Export(program *ast.Program) (string, error) {
	e.Reset()
	if err := ast.Walk(e, program); err != nil {
		return "", err
	}
	return Header + e.body.String() + Footer, nil
}

// Compile parses input and exports its tree.
func Compile(input string) (string, error) {
	program, err := parser.Parse(input)
	if err != nil {
		return "", err
	}
	return New().Export(program)
}

func (e *Exporter) node(label string, n ast.Node) error {
	id := e.next
	e.next++
	fmt.Fprintf(&e.body, "node%d [label=\"%s\"]\n", id, escape(label))

	for _, child := range ast.Children(n) {
		if err := ast.Walk(e, child); err != nil {
			return err
		}
		fmt.Fprintf(&e.body, "node%d -> node%d\n", id, e.last)
	}

	e.last = id
	return nil
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escape(label string) string { return labelEscaper.Replace(label) }

func (e *Exporter) VisitProgram(n *ast.Program) error { return e.node("Program", n) }

func (e *Exporter) VisitLibraryImport(n *ast.LibraryImport) error {
	return e.node("Library: "+n.Name, n)
}

func (e *Exporter) VisitFunctionImpl(n *ast.FunctionImpl) error {
	return e.node("FunImpl: "+n.Name, n)
}

func (e *Exporter) VisitReturn(n *ast.Return) error { return e.node("Return", n) }

func (e *Exporter) VisitFunctionCall(n *ast.FunctionCall) error {
	return e.node("FunCall: "+n.Library+" "+n.Name, n)
}

func (e *Exporter) VisitConditional(n *ast.Conditional) error { return e.node("Cond", n) }
func (e *Exporter) VisitLoop(n *ast.Loop) error               { return e.node("Loop", n) }
func (e *Exporter) VisitTypeRef(n *ast.TypeRef) error         { return e.node("Type: "+n.Name, n) }
func (e *Exporter) VisitVarRef(n *ast.VarRef) error           { return e.node("Var: "+n.Name, n) }

func (e *Exporter) VisitStringLiteral(n *ast.StringLiteral) error {
	return e.node("String: "+n.Value, n)
}

func (e *Exporter) VisitVarDecl(n *ast.VarDecl) error             { return e.node("VarDecl", n) }
func (e *Exporter) VisitAssign(n *ast.Assign) error               { return e.node("Assign", n) }
func (e *Exporter) VisitArgumentList(n *ast.ArgumentList) error   { return e.node("Args", n) }
func (e *Exporter) VisitStatementList(n *ast.StatementList) error { return e.node("Stmts", n) }
func (e *Exporter) VisitBinaryOp(n *ast.BinaryOp) error           { return e.node(n.Op.Literal, n) }
func (e *Exporter) VisitUnaryOp(n *ast.UnaryOp) error             { return e.node(n.Op.Literal, n) }
func (e *Exporter) VisitNumberLiteral(n *ast.NumberLiteral) error { return e.node(n.Literal, n) }
