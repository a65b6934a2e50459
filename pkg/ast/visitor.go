package ast

import "fmt"

// Visitor has one handler per node variant. Walk routes a node to the
// matching handler; handlers decide whether and how to descend.
type Visitor interface {
	VisitProgram(*Program) error
	VisitLibraryImport(*LibraryImport) error
	VisitFunctionImpl(*FunctionImpl) error
	VisitReturn(*Return) error
	VisitFunctionCall(*FunctionCall) error
	VisitConditional(*Conditional) error
	VisitLoop(*Loop) error
	VisitTypeRef(*TypeRef) error
	VisitVarRef(*VarRef) error
	VisitStringLiteral(*StringLiteral) error
	VisitVarDecl(*VarDecl) error
	VisitAssign(*Assign) error
	VisitArgumentList(*ArgumentList) error
	VisitStatementList(*StatementList) error
	VisitBinaryOp(*BinaryOp) error
	VisitUnaryOp(*UnaryOp) error
	VisitNumberLiteral(*NumberLiteral) error
}

// Walk dispatches node to v.
func Walk(v Visitor, node Node) error {
	switch n := node.(type) {
	case *Program:
		return v.VisitProgram(n)
	case *LibraryImport:
		return v.VisitLibraryImport(n)
	case *FunctionImpl:
		return v.VisitFunctionImpl(n)
	case *Return:
		return v.VisitReturn(n)
	case *FunctionCall:
		return v.VisitFunctionCall(n)
	case *Conditional:
		return v.VisitConditional(n)
	case *Loop:
		return v.VisitLoop(n)
	case *TypeRef:
		return v.VisitTypeRef(n)
	case *VarRef:
		return v.VisitVarRef(n)
	case *StringLiteral:
		return v.VisitStringLiteral(n)
	case *VarDecl:
		return v.VisitVarDecl(n)
	case *Assign:
		return v.VisitAssign(n)
	case *ArgumentList:
		return v.VisitArgumentList(n)
	case *StatementList:
		return v.VisitStatementList(n)
	case *BinaryOp:
		return v.VisitBinaryOp(n)
	case *UnaryOp:
		return v.VisitUnaryOp(n)
	case *NumberLiteral:
		return v.VisitNumberLiteral(n)
	case nil:
		return fmt.Errorf("ast: walk of nil node")
	}
	return fmt.Errorf("ast: unexpected node %T", node)
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Program:
		return n.Sections
	case *FunctionImpl:
		return []Node{n.Params, n.Body, n.Return}
	case *Return:
		if n.Value == nil {
			return []Node{n.Type}
		}
		return []Node{n.Type, n.Value}
	case *FunctionCall:
		return n.Args
	case *Conditional:
		return []Node{n.Condition, n.Body}
	case *Loop:
		return []Node{n.Condition, n.Body}
	case *VarDecl:
		return []Node{n.Type, n.Var}
	case *Assign:
		return []Node{n.Var, n.Value}
	case *ArgumentList:
		children := make([]Node, 0, len(n.Params))
		for _, p := range n.Params {
			children = append(children, p)
		}
		return children
	case *StatementList:
		return n.Statements
	case *BinaryOp:
		return []Node{n.Left, n.Right}
	case *UnaryOp:
		return []Node{n.Operand}
	}
	return nil
}

// Inspect calls fn for node and, while fn returns true, for every
// descendant in pre-order.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}
