package ast

import (
	"bytes"
	"nonek/pkg/token"
	"strings"
)

// Node is implemented by every tree variant. The set is closed: only the
// types in this file satisfy it.
type Node interface {
	Line() int
	String() string
	node()
}

// Pos is the source line a node was recognized at.
type Pos int

func (p Pos) Line() int { return int(p) }
func (Pos) node()       {}

type Program struct {
	Pos
	Sections []Node // LibraryImport, FunctionImpl and statements in source order
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Sections {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

type LibraryImport struct {
	Pos
	Name string
}

func (li *LibraryImport) String() string { return "-> " + li.Name }

type FunctionImpl struct {
	Pos
	Name   string
	Params *ArgumentList
	Body   *StatementList
	Return *Return
}

func (fi *FunctionImpl) String() string {
	var out bytes.Buffer
	out.WriteString("@" + fi.Name + ":(")
	out.WriteString(fi.Params.String())
	out.WriteString(") -> ")
	out.WriteString(fi.Return.Type.String())
	out.WriteString(" {")
	out.WriteString(fi.Body.String())
	if fi.Return.Value != nil {
		out.WriteString("\t" + fi.Return.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// Return holds the declared return type of a function and the returned
// variable. Value is nil when the body has no RETURN.
type Return struct {
	Pos
	Type  *TypeRef
	Value *VarRef
}

func (r *Return) String() string {
	if r.Value == nil {
		return "RETURN"
	}
	return "RETURN " + r.Value.String()
}

type FunctionCall struct {
	Pos
	Library string
	Name    string
	Args    []Node
}

func (fc *FunctionCall) String() string {
	args := []string{}
	for _, a := range fc.Args {
		args = append(args, a.String())
	}
	return "@" + fc.Library + "." + fc.Name + "(" + strings.Join(args, ", ") + ")"
}

type Conditional struct {
	Pos
	Condition Node
	Body      *StatementList
}

func (c *Conditional) String() string {
	return "COND:(" + c.Condition.String() + ") -> {" + c.Body.String() + "}"
}

type Loop struct {
	Pos
	Condition Node
	Body      *StatementList
}

func (l *Loop) String() string {
	return "LOOP:(" + l.Condition.String() + ") -> {" + l.Body.String() + "}"
}

type TypeRef struct {
	Pos
	Name string
}

func (t *TypeRef) String() string { return t.Name }

// VarRef is an identifier in value position. With the sigil it names a
// variable; without it, it is literal text.
type VarRef struct {
	Pos
	Name string
}

func (v *VarRef) String() string { return v.Name }

// IsVariable reports whether the reference carries the variable sigil.
func (v *VarRef) IsVariable() bool { return token.IsVariable(v.Name) }

type StringLiteral struct {
	Pos
	Value string
}

func (s *StringLiteral) String() string { return "'" + s.Value + "'" }

type VarDecl struct {
	Pos
	Type *TypeRef
	Var  *VarRef
}

func (vd *VarDecl) String() string { return vd.Type.String() + " " + vd.Var.String() }

type Assign struct {
	Pos
	Var   *VarRef
	Value Node
}

func (a *Assign) String() string { return a.Var.String() + " = " + a.Value.String() }

type ArgumentList struct {
	Pos
	Params []*VarDecl
}

func (al *ArgumentList) String() string {
	params := []string{}
	for _, p := range al.Params {
		params = append(params, p.String())
	}
	return strings.Join(params, ", ")
}

type StatementList struct {
	Pos
	Statements []Node
}

func (sl *StatementList) String() string {
	var out bytes.Buffer
	out.WriteString("\n")
	for _, s := range sl.Statements {
		out.WriteString("\t" + s.String() + "\n")
	}
	return out.String()
}

type BinaryOp struct {
	Pos
	Left  Node
	Op    token.Token
	Right Node
}

func (b *BinaryOp) String() string {
	return "(" + b.Left.String() + " " + b.Op.Literal + " " + b.Right.String() + ")"
}

type UnaryOp struct {
	Pos
	Op      token.Token
	Operand Node
}

func (u *UnaryOp) String() string {
	if u.Op.Type == token.NOT {
		return "NOT " + u.Operand.String()
	}
	return u.Op.Literal + u.Operand.String()
}

// NumberLiteral keeps the digits as written. Value is only meaningful when
// Overflow is false; larger literals are passed through as text.
type NumberLiteral struct {
	Pos
	Literal  string
	Value    int64
	Overflow bool
}

func (n *NumberLiteral) String() string { return n.Literal }
