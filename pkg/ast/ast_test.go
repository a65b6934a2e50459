package ast

import (
	"nonek/pkg/token"
	"testing"

	"github.com/nalgeon/be"
)

// countingVisitor records which handler each node was routed to.
type countingVisitor struct {
	seen []string
}

func (c *countingVisitor) hit(name string) error {
	c.seen = append(c.seen, name)
	return nil
}

func (c *countingVisitor) VisitProgram(*Program) error             { return c.hit("Program") }
func (c *countingVisitor) VisitLibraryImport(*LibraryImport) error { return c.hit("LibraryImport") }
func (c *countingVisitor) VisitFunctionImpl(*FunctionImpl) error   { return c.hit("FunctionImpl") }
func (c *countingVisitor) VisitReturn(*Return) error               { return c.hit("Return") }
func (c *countingVisitor) VisitFunctionCall(*FunctionCall) error   { return c.hit("FunctionCall") }
func (c *countingVisitor) VisitConditional(*Conditional) error     { return c.hit("Conditional") }
func (c *countingVisitor) VisitLoop(*Loop) error                   { return c.hit("Loop") }
func (c *countingVisitor) VisitTypeRef(*TypeRef) error             { return c.hit("TypeRef") }
func (c *countingVisitor) VisitVarRef(*VarRef) error               { return c.hit("VarRef") }
func (c *countingVisitor) VisitStringLiteral(*StringLiteral) error { return c.hit("StringLiteral") }
func (c *countingVisitor) VisitVarDecl(*VarDecl) error             { return c.hit("VarDecl") }
func (c *countingVisitor) VisitAssign(*Assign) error               { return c.hit("Assign") }
func (c *countingVisitor) VisitArgumentList(*ArgumentList) error   { return c.hit("ArgumentList") }
func (c *countingVisitor) VisitStatementList(*StatementList) error { return c.hit("StatementList") }
func (c *countingVisitor) VisitBinaryOp(*BinaryOp) error           { return c.hit("BinaryOp") }
func (c *countingVisitor) VisitUnaryOp(*UnaryOp) error             { return c.hit("UnaryOp") }
func (c *countingVisitor) VisitNumberLiteral(*NumberLiteral) error { return c.hit("NumberLiteral") }

func TestWalkDispatch(t *testing.T) {
	nodes := []Node{
		&Program{}, &LibraryImport{}, &FunctionImpl{}, &Return{}, &FunctionCall{},
		&Conditional{}, &Loop{}, &TypeRef{}, &VarRef{}, &StringLiteral{},
		&VarDecl{}, &Assign{}, &ArgumentList{}, &StatementList{}, &BinaryOp{},
		&UnaryOp{}, &NumberLiteral{},
	}
	v := &countingVisitor{}
	for _, n := range nodes {
		be.Err(t, Walk(v, n), nil)
	}
	be.Equal(t, v.seen, []string{
		"Program", "LibraryImport", "FunctionImpl", "Return", "FunctionCall",
		"Conditional", "Loop", "TypeRef", "VarRef", "StringLiteral",
		"VarDecl", "Assign", "ArgumentList", "StatementList", "BinaryOp",
		"UnaryOp", "NumberLiteral",
	})

	be.True(t, Walk(v, nil) != nil)
}

func TestInspectPreOrder(t *testing.T) {
	decl := &VarDecl{Pos: 2, Type: &TypeRef{Pos: 2, Name: "INT"}, Var: &VarRef{Pos: 2, Name: "#x"}}
	assign := &Assign{
		Pos: 3,
		Var: &VarRef{Pos: 3, Name: "#x"},
		Value: &BinaryOp{
			Pos:   3,
			Left:  &NumberLiteral{Pos: 3, Literal: "1", Value: 1},
			Op:    token.Token{Type: token.PLUS, Literal: "+"},
			Right: &NumberLiteral{Pos: 3, Literal: "2", Value: 2},
		},
	}
	program := &Program{Pos: 1, Sections: []Node{decl, assign}}

	var order []string
	Inspect(program, func(n Node) bool {
		order = append(order, n.String())
		return true
	})
	be.Equal(t, order, []string{
		program.String(), "INT #x", "INT", "#x", "#x = (1 + 2)", "#x", "(1 + 2)", "1", "2",
	})

	var lines []int
	Inspect(program, func(n Node) bool {
		lines = append(lines, n.Line())
		_, isDecl := n.(*VarDecl)
		return !isDecl
	})
	be.Equal(t, lines, []int{1, 2, 3, 3, 3, 3, 3})
}

func TestVarRefIsVariable(t *testing.T) {
	be.True(t, (&VarRef{Name: "#a"}).IsVariable())
	be.True(t, !(&VarRef{Name: "hello"}).IsVariable())
}

func TestFunctionImplString(t *testing.T) {
	fn := &FunctionImpl{
		Name: "id",
		Params: &ArgumentList{Params: []*VarDecl{
			{Type: &TypeRef{Name: "INT"}, Var: &VarRef{Name: "#a"}},
		}},
		Body: &StatementList{},
		Return: &Return{
			Type:  &TypeRef{Name: "INT"},
			Value: &VarRef{Name: "#a"},
		},
	}
	be.Equal(t, fn.String(), "@id:(INT #a) -> INT {\n\tRETURN #a\n}")
}
