package lexer

import (
	"fmt"
	"nonek/pkg/token"
	"strings"
)

// Error is a fatal lexical error: a character no production accepts.
type Error struct {
	Char byte
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexical error at line %d: %s", e.Line, e.Reason())
}

// Reason is the message without the position prefix.
func (e *Error) Reason() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("unexpected character %q", e.Char)
}

// SourceLine implements the positional interface used by diag.
func (e *Error) SourceLine() int { return e.Line }

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int

	err *Error
}

// State is the complete mutable cursor of a Lexer. Restoring a State makes
// the lexer produce exactly the tokens it produced after the State was taken.
type State struct {
	position     int
	readPosition int
	ch           byte
	line         int
	err          *Error
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// Reset rewinds the lexer to the start of a new input.
func (l *Lexer) Reset(input string) {
	*l = Lexer{input: input, line: 1}
	l.readChar()
}

// Line is the line of the last token returned by NextToken.
func (l *Lexer) Line() int { return l.line }

// Err is the lexical error behind the last ILLEGAL token, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

func (l *Lexer) Save() State {
	return State{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		line:         l.line,
		err:          l.err,
	}
}

func (l *Lexer) Restore(s State) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.ch = s.ch
	l.line = s.line
	l.err = s.err
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	if l.atEOF() {
		return token.Token{Type: token.EOF, Literal: ""}
	}

	switch l.ch {
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = token.Token{Type: token.ARROW, Literal: "->"}
		} else {
			tok = newToken(token.MINUS, l.ch)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LESS_EQ, Literal: "<="}
		} else {
			tok = newToken(token.LESS, l.ch)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GREATER_EQ, Literal: ">="}
		} else {
			tok = newToken(token.GREATER, l.ch)
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQUAL, Literal: "=="}
		} else {
			tok = newToken(token.ASSIGN, l.ch)
		}
	case '!':
		if l.peekChar() != '=' {
			return l.illegal(l.ch, "")
		}
		l.readChar()
		tok = token.Token{Type: token.NOT_EQUAL, Literal: "!="}
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			tok = token.Token{Type: token.DIV, Literal: "//"}
		} else {
			tok = newToken(token.NDIV, l.ch)
		}
	case '*':
		if l.peekChar() == '*' && l.peekAt(2) == '*' {
			return l.readComment()
		}
		tok = newToken(token.MUL, l.ch)
	case '%':
		tok = newToken(token.MOD, l.ch)
	case '+':
		tok = newToken(token.PLUS, l.ch)
	case '@':
		tok = newToken(token.MONKEY, l.ch)
	case ':':
		tok = newToken(token.COLON, l.ch)
	case ',':
		tok = newToken(token.COMMA, l.ch)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch)
	case '.':
		tok = newToken(token.DOT, l.ch)
	case '(':
		tok = newToken(token.LPAREN, l.ch)
	case ')':
		tok = newToken(token.RPAREN, l.ch)
	case '{':
		tok = newToken(token.LBRACKET, l.ch)
	case '}':
		tok = newToken(token.RBRACKET, l.ch)
	case '\'':
		return l.readString()
	case token.Sigil:
		if !isLetter(l.peekChar()) {
			return l.illegal(l.ch, "variable sigil must be followed by a letter")
		}
		l.readChar()
		return token.Token{Type: token.ID, Literal: string(token.Sigil) + l.readIdentifier()}
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal}
		} else if isDigit(l.ch) {
			return token.Token{Type: token.INTEGER, Literal: l.readNumber()}
		}
		return l.illegal(l.ch, "")
	}

	l.readChar()
	return tok
}

func newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch)}
}

func (l *Lexer) illegal(ch byte, msg string) token.Token {
	l.err = &Error{Char: ch, Line: l.line, Msg: msg}
	return token.Token{Type: token.ILLEGAL, Literal: string(ch)}
}

func (l *Lexer) peekAt(offset int) byte {
	i := l.position + offset
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\f' || l.ch == '\v' {
		if l.ch == '\n' {
			l.line++
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// readString scans a single-quoted literal. There are no escapes.
func (l *Lexer) readString() token.Token {
	startLine := l.line
	l.readChar() // opening quote
	position := l.position
	for l.ch != '\'' {
		if l.atEOF() {
			l.err = &Error{Char: '\'', Line: startLine, Msg: "unterminated string literal"}
			return token.Token{Type: token.ILLEGAL, Literal: "'"}
		}
		if l.ch == '\n' {
			l.line++
		}
		l.readChar()
	}
	literal := l.input[position:l.position]
	l.readChar() // closing quote
	return token.Token{Type: token.STRING, Literal: literal}
}

// readComment consumes "***" and the rest of the line.
func (l *Lexer) readComment() token.Token {
	l.readChar()
	l.readChar()
	l.readChar()
	position := l.position
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
	return token.Token{Type: token.COMMENT, Literal: l.input[position:l.position]}
}

// Tokenize lexes the whole input, stopping after EOF or at the first error.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return toks, l.Err()
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

// Dump renders the token stream one token per line as: line type literal.
func Dump(input string) (string, error) {
	l := New(input)
	var out strings.Builder
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return "", l.Err()
		}
		fmt.Fprintf(&out, "%d %s %q\n", l.Line(), tok.Type, tok.Literal)
		if tok.Type == token.EOF {
			return out.String(), nil
		}
	}
}
