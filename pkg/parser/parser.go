package parser

import (
	"errors"
	"fmt"
	"nonek/pkg/ast"
	"nonek/pkg/lexer"
	"nonek/pkg/token"
	"strconv"
)

// Error is a fatal syntax error. Either Msg is set, or Expected names what
// the grammar required where Found was seen.
type Error struct {
	Expected string
	Found    token.TokenType
	Literal  string
	Line     int
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason())
}

func (e *Error) Reason() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("expected %s, but found %s", e.Expected, e.Found)
}

func (e *Error) SourceLine() int { return e.Line }

// bailout carries the first error up to ParseProgram.
type bailout struct {
	err error
}

type Parser struct {
	l *lexer.Lexer

	curToken token.Token
	curLine  int
}

// snapshot is everything a speculative scan may disturb.
type snapshot struct {
	lex  lexer.State
	tok  token.Token
	line int
}

func New(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Parse tokenizes and parses a complete source text.
func Parse(input string) (*ast.Program, error) {
	return New(lexer.New(input)).ParseProgram()
}

// ParseProgram parses the whole token stream. The first lexical or syntax
// error aborts parsing and is returned.
func (p *Parser) ParseProgram() (program *ast.Program, err error) {
	defer p.recover(&err)

	p.nextToken()
	program = &ast.Program{Pos: ast.Pos(p.curLine)}

	for {
		switch p.curToken.Type {
		case token.LIBRARIES:
			program.Sections = append(program.Sections, p.parseLibraries()...)
		case token.FUNCTIONS:
			program.Sections = append(program.Sections, p.parseFunctions()...)
		case token.EXECUTION:
			program.Sections = append(program.Sections, p.parseExecution()...)
		case token.EOF:
			return program, nil
		default:
			p.expected("section (Libraries, Functions or Execution)")
		}
	}
}

func (p *Parser) recover(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}

func (p *Parser) nextToken() {
	for {
		p.curToken = p.l.NextToken()
		p.curLine = p.l.Line()
		switch p.curToken.Type {
		case token.COMMENT:
			continue
		case token.ILLEGAL:
			panic(bailout{p.l.Err()})
		}
		return
	}
}

func (p *Parser) save() snapshot {
	return snapshot{lex: p.l.Save(), tok: p.curToken, line: p.curLine}
}

func (p *Parser) restore(s snapshot) {
	p.l.Restore(s.lex)
	p.curToken = s.tok
	p.curLine = s.line
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) eat(t token.TokenType) {
	if !p.curTokenIs(t) {
		p.expected(string(t))
	}
	p.nextToken()
}

func (p *Parser) expected(what string) {
	panic(bailout{&Error{
		Expected: what,
		Found:    p.curToken.Type,
		Literal:  p.curToken.Literal,
		Line:     p.curLine,
	}})
}

func (p *Parser) fail(format string, args ...interface{}) {
	panic(bailout{&Error{
		Found:   p.curToken.Type,
		Literal: p.curToken.Literal,
		Line:    p.curLine,
		Msg:     fmt.Sprintf(format, args...),
	}})
}

// expectName consumes a plain identifier: a library, function or operation name.
func (p *Parser) expectName() string {
	if !p.curTokenIs(token.ID) || token.IsVariable(p.curToken.Literal) {
		p.expected("name")
	}
	name := p.curToken.Literal
	p.nextToken()
	return name
}

// expectVariable consumes a sigil identifier.
func (p *Parser) expectVariable() *ast.VarRef {
	if !p.curTokenIs(token.ID) || !token.IsVariable(p.curToken.Literal) {
		p.expected("variable")
	}
	v := &ast.VarRef{Pos: ast.Pos(p.curLine), Name: p.curToken.Literal}
	p.nextToken()
	return v
}

func (p *Parser) parseLibraries() []ast.Node {
	p.eat(token.LIBRARIES)
	p.eat(token.LBRACKET)

	libs := []ast.Node{}
	for p.curTokenIs(token.ARROW) {
		line := p.curLine
		p.eat(token.ARROW)
		libs = append(libs, &ast.LibraryImport{Pos: ast.Pos(line), Name: p.expectName()})
	}

	p.eat(token.RBRACKET)
	return libs
}

func (p *Parser) parseFunctions() []ast.Node {
	p.eat(token.FUNCTIONS)
	p.eat(token.LBRACKET)

	functions := []ast.Node{}
	for !p.curTokenIs(token.RBRACKET) && !p.curTokenIs(token.EOF) {
		functions = append(functions, p.parseFunctionImpl())
	}

	p.eat(token.RBRACKET)
	return functions
}

func (p *Parser) parseExecution() []ast.Node {
	p.eat(token.EXECUTION)
	p.eat(token.LBRACKET)
	statements := p.parseStatements()
	p.eat(token.RBRACKET)
	return statements
}

func (p *Parser) parseFunctionImpl() *ast.FunctionImpl {
	fn := &ast.FunctionImpl{Pos: ast.Pos(p.curLine)}

	p.eat(token.MONKEY)
	fn.Name = p.expectName()
	p.eat(token.COLON)

	fn.Params = &ast.ArgumentList{Pos: ast.Pos(p.curLine)}
	p.eat(token.LPAREN)
	fn.Params.Params = p.parseParameters()
	p.eat(token.RPAREN)
	p.eat(token.ARROW)

	retType := &ast.TypeRef{Pos: ast.Pos(p.curLine), Name: p.curToken.Literal}
	p.eat(token.TYPE)

	p.eat(token.LBRACKET)
	fn.Body = &ast.StatementList{Pos: ast.Pos(p.curLine)}
	fn.Body.Statements = p.parseStatements()

	fn.Return = &ast.Return{Pos: ast.Pos(p.curLine), Type: retType}
	if p.curTokenIs(token.RETURN) {
		p.eat(token.RETURN)
		fn.Return.Value = p.expectVariable()
	}
	p.eat(token.RBRACKET)

	return fn
}

func (p *Parser) parseParameters() []*ast.VarDecl {
	params := []*ast.VarDecl{}
	if p.curTokenIs(token.RPAREN) {
		return params
	}

	for {
		line := p.curLine
		typ := &ast.TypeRef{Pos: ast.Pos(line), Name: p.curToken.Literal}
		p.eat(token.TYPE)
		params = append(params, &ast.VarDecl{Pos: ast.Pos(line), Type: typ, Var: p.expectVariable()})

		if !p.curTokenIs(token.COMMA) {
			return params
		}
		p.eat(token.COMMA)
	}
}

// parseStatements reads statements up to a closing bracket, RETURN or EOF.
func (p *Parser) parseStatements() []ast.Node {
	statements := []ast.Node{}
	for !p.curTokenIs(token.RBRACKET) && !p.curTokenIs(token.RETURN) && !p.curTokenIs(token.EOF) {
		statements = append(statements, p.parseStatement()...)
	}
	return statements
}

func (p *Parser) parseStatement() []ast.Node {
	switch p.curToken.Type {
	case token.TYPE:
		if p.isFunctionHeader() {
			p.fail("function definitions are only allowed in the Functions section")
		}
		return p.parseVarDeclarations()
	case token.ID:
		return []ast.Node{p.parseAssignment()}
	case token.COND:
		return []ast.Node{p.parseConditional()}
	case token.LOOP:
		return []ast.Node{p.parseLoop()}
	case token.MONKEY:
		return []ast.Node{p.parseCall()}
	}
	p.expected("statement")
	return nil
}

func (p *Parser) parseVarDeclarations() []ast.Node {
	declarations := []ast.Node{}

	for p.curTokenIs(token.TYPE) {
		line := p.curLine
		typ := &ast.TypeRef{Pos: ast.Pos(line), Name: p.curToken.Literal}
		p.eat(token.TYPE)
		v := p.expectVariable()
		declarations = append(declarations, &ast.VarDecl{Pos: ast.Pos(line), Type: typ, Var: v})

		if p.curTokenIs(token.ASSIGN) {
			assignLine := p.curLine
			p.eat(token.ASSIGN)
			target := &ast.VarRef{Pos: v.Pos, Name: v.Name}
			declarations = append(declarations, &ast.Assign{Pos: ast.Pos(assignLine), Var: target, Value: p.parseValue()})
		}
	}

	return declarations
}

func (p *Parser) parseAssignment() *ast.Assign {
	target := p.expectVariable()
	line := p.curLine
	p.eat(token.ASSIGN)
	return &ast.Assign{Pos: ast.Pos(line), Var: target, Value: p.parseValue()}
}

// parseValue parses the right-hand side of an assignment or initializer.
func (p *Parser) parseValue() ast.Node {
	switch {
	case p.isBoolExpr():
		return p.parseBoolExpr()
	case p.curTokenIs(token.STRING):
		s := &ast.StringLiteral{Pos: ast.Pos(p.curLine), Value: p.curToken.Literal}
		p.eat(token.STRING)
		return s
	case p.curTokenIs(token.MONKEY):
		return p.parseCallExpression()
	}
	return p.parseExpression()
}

// parseCallExpression parses an expression, or a comparison, led by a call.
func (p *Parser) parseCallExpression() ast.Node {
	node := p.parseExpressionFrom(p.parseCall())
	if token.IsComparison(p.curToken.Type) {
		return p.parseComparisonFrom(node)
	}
	return node
}

func (p *Parser) parseConditional() *ast.Conditional {
	cond := &ast.Conditional{Pos: ast.Pos(p.curLine)}

	p.eat(token.COND)
	p.eat(token.COLON)
	p.eat(token.LPAREN)
	if p.curTokenIs(token.MONKEY) {
		cond.Condition = p.parseCallExpression()
	} else {
		cond.Condition = p.parseBoolExpr()
	}
	p.eat(token.RPAREN)
	p.eat(token.ARROW)

	cond.Body = p.parseBlock("COND")
	return cond
}

func (p *Parser) parseLoop() *ast.Loop {
	loop := &ast.Loop{Pos: ast.Pos(p.curLine)}

	p.eat(token.LOOP)
	p.eat(token.COLON)
	p.eat(token.LPAREN)
	loop.Condition = p.parseBoolExpr()
	p.eat(token.RPAREN)
	p.eat(token.ARROW)

	loop.Body = p.parseBlock("LOOP")
	return loop
}

// parseBlock parses a non-empty braced statement list.
func (p *Parser) parseBlock(owner string) *ast.StatementList {
	block := &ast.StatementList{Pos: ast.Pos(p.curLine)}
	p.eat(token.LBRACKET)

	block.Statements = p.parseStatements()
	if len(block.Statements) == 0 {
		p.fail("expected at least one statement in %s block, but found %s", owner, p.curToken.Type)
	}

	p.eat(token.RBRACKET)
	return block
}

func (p *Parser) parseCall() *ast.FunctionCall {
	call := &ast.FunctionCall{Pos: ast.Pos(p.curLine)}

	p.eat(token.MONKEY)
	call.Library = p.expectName()
	p.eat(token.DOT)
	call.Name = p.expectName()

	p.eat(token.LPAREN)
	call.Args = []ast.Node{}
	if !p.curTokenIs(token.RPAREN) {
		for {
			call.Args = append(call.Args, p.parseArgument())
			if !p.curTokenIs(token.COMMA) {
				break
			}
			p.eat(token.COMMA)
		}
	}
	p.eat(token.RPAREN)

	return call
}

func (p *Parser) parseArgument() ast.Node {
	line := ast.Pos(p.curLine)
	switch p.curToken.Type {
	case token.STRING:
		s := &ast.StringLiteral{Pos: line, Value: p.curToken.Literal}
		p.nextToken()
		return s
	case token.INTEGER:
		return p.parseNumber()
	case token.ID:
		v := &ast.VarRef{Pos: line, Name: p.curToken.Literal}
		p.nextToken()
		return v
	}
	p.expected("argument")
	return nil
}

func (p *Parser) parseExpression() ast.Node {
	return p.parseExpressionFrom(nil)
}

// parseExpressionFrom parses expr; a non-nil first is the already parsed
// leading factor.
func (p *Parser) parseExpressionFrom(first ast.Node) ast.Node {
	node := p.parseTermFrom(first)

	for p.curTokenIs(token.PLUS) || p.curTokenIs(token.MINUS) {
		op := p.curToken
		line := p.curLine
		p.nextToken()
		node = &ast.BinaryOp{Pos: ast.Pos(line), Left: node, Op: op, Right: p.parseTermFrom(nil)}
	}

	return node
}

func (p *Parser) parseTermFrom(first ast.Node) ast.Node {
	node := first
	if node == nil {
		node = p.parseFactor()
	}

	for p.curTokenIs(token.MUL) || p.curTokenIs(token.NDIV) || p.curTokenIs(token.DIV) || p.curTokenIs(token.MOD) {
		op := p.curToken
		line := p.curLine
		p.nextToken()
		node = &ast.BinaryOp{Pos: ast.Pos(line), Left: node, Op: op, Right: p.parseFactor()}
	}

	return node
}

func (p *Parser) parseFactor() ast.Node {
	switch p.curToken.Type {
	case token.INTEGER:
		return p.parseNumber()
	case token.LPAREN:
		p.eat(token.LPAREN)
		node := p.parseExpression()
		p.eat(token.RPAREN)
		return node
	case token.MONKEY:
		return p.parseCall()
	case token.ID:
		v := &ast.VarRef{Pos: ast.Pos(p.curLine), Name: p.curToken.Literal}
		p.nextToken()
		return v
	case token.PLUS, token.MINUS:
		op := p.curToken
		line := p.curLine
		p.nextToken()
		return &ast.UnaryOp{Pos: ast.Pos(line), Op: op, Operand: p.parseFactor()}
	}
	p.expected("expression")
	return nil
}

func (p *Parser) parseNumber() *ast.NumberLiteral {
	lit := &ast.NumberLiteral{Pos: ast.Pos(p.curLine), Literal: p.curToken.Literal}
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		lit.Overflow = true
	case err != nil:
		p.fail("could not parse %q as integer", p.curToken.Literal)
	default:
		lit.Value = value
	}
	p.nextToken()
	return lit
}

// parseBoolExpr parses a comparison, or a chain of parenthesized
// comparisons joined by AND/OR.
func (p *Parser) parseBoolExpr() ast.Node {
	switch p.curToken.Type {
	case token.INTEGER, token.ID, token.MONKEY, token.PLUS, token.MINUS:
		return p.parseComparisonFrom(nil)
	}
	return p.parseLogical()
}

func (p *Parser) parseComparisonFrom(first ast.Node) ast.Node {
	left := p.parseExpressionFrom(first)

	op := p.curToken
	line := p.curLine
	if !token.IsComparison(op.Type) {
		p.expected("comparison operator")
	}
	p.nextToken()

	return &ast.BinaryOp{Pos: ast.Pos(line), Left: left, Op: op, Right: p.parseExpression()}
}

func (p *Parser) parseLogical() ast.Node {
	var node ast.Node
	if p.curTokenIs(token.NOT) {
		node = p.parseNot()
	} else {
		node = p.parseParenComparison()
	}

	for p.curTokenIs(token.AND) || p.curTokenIs(token.OR) {
		op := p.curToken
		line := p.curLine
		p.nextToken()

		var right ast.Node
		if p.curTokenIs(token.NOT) {
			right = p.parseNot()
		} else {
			right = p.parseParenComparison()
		}
		node = &ast.BinaryOp{Pos: ast.Pos(line), Left: node, Op: op, Right: right}
	}

	return node
}

func (p *Parser) parseParenComparison() ast.Node {
	p.eat(token.LPAREN)
	node := p.parseComparisonFrom(nil)
	p.eat(token.RPAREN)
	return node
}

func (p *Parser) parseNot() ast.Node {
	op := p.curToken
	line := p.curLine
	p.eat(token.NOT)
	p.eat(token.LPAREN)
	operand := p.parseBoolExpr()
	p.eat(token.RPAREN)
	return &ast.UnaryOp{Pos: ast.Pos(line), Op: op, Operand: operand}
}

// isBoolExpr scans forward to the end of the current statement looking for
// a comparison, logical or negation operator. The parser state is restored
// before returning.
func (p *Parser) isBoolExpr() bool {
	s := p.save()
	defer p.restore(s)

	for !isStatementBoundary(p.curToken.Type) {
		if token.IsBoolean(p.curToken.Type) {
			return true
		}
		p.nextToken()
	}
	return false
}

func isStatementBoundary(t token.TokenType) bool {
	switch t {
	case token.ASSIGN, token.MONKEY, token.EOF, token.LBRACKET, token.RBRACKET,
		token.COND, token.LOOP, token.TYPE, token.RETURN:
		return true
	}
	return false
}

// isFunctionHeader reports whether the tokens ahead read TYPE ID '('. The
// parser state is restored before returning.
func (p *Parser) isFunctionHeader() bool {
	s := p.save()
	defer p.restore(s)

	if !p.curTokenIs(token.TYPE) {
		return false
	}
	p.nextToken()
	if !p.curTokenIs(token.ID) {
		return false
	}
	p.nextToken()
	return p.curTokenIs(token.LPAREN)
}
