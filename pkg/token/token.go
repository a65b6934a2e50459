package token

import "fmt"

type TokenType string

const (
	// Special
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	COMMENT = "COMMENT"

	// Identifiers & Literals
	ID      = "ID"
	INTEGER = "INTEGER"
	STRING  = "STRING"
	TYPE    = "TYPE"

	// Operators
	ASSIGN = "="
	PLUS   = "+"
	MINUS  = "-"
	MUL    = "*"
	NDIV   = "/"
	DIV    = "DIV"
	MOD    = "MOD"

	LESS       = "<"
	GREATER    = ">"
	LESS_EQ    = "<="
	GREATER_EQ = ">="
	EQUAL      = "=="
	NOT_EQUAL  = "!="

	AND = "AND"
	OR  = "OR"
	NOT = "NOT"

	// Delimiters
	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"
	DOT       = "."
	LPAREN    = "("
	RPAREN    = ")"
	LBRACKET  = "{"
	RBRACKET  = "}"
	ARROW     = "->"
	MONKEY    = "@"

	// Keywords
	LIBRARIES = "LIBRARIES"
	FUNCTIONS = "FUNCTIONS"
	EXECUTION = "EXECUTION"
	COND      = "COND"
	LOOP      = "LOOP"
	RETURN    = "RETURN"
)

// Sigil marks an identifier as a variable reference.
const Sigil = '#'

// Token is one lexeme. Line numbers are tracked by the lexer, not the token.
type Token struct {
	Type    TokenType
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

var keywords = map[string]TokenType{
	"Libraries": LIBRARIES,
	"Functions": FUNCTIONS,
	"Execution": EXECUTION,
	"INT":       TYPE,
	"STRING":    TYPE,
	"FLOAT":     TYPE,
	"ARRAY":     TYPE,
	"BOOL":      TYPE,
	"VOID":      TYPE,
	"AND":       AND,
	"OR":        OR,
	"NOT":       NOT,
	"DIV":       DIV,
	"MOD":       MOD,
	"COND":      COND,
	"LOOP":      LOOP,
	"RETURN":    RETURN,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return ID
}

// IsVariable reports whether an identifier literal carries the variable sigil.
func IsVariable(literal string) bool {
	return len(literal) > 1 && literal[0] == Sigil
}

// IsComparison reports whether t is one of the six comparison operators.
func IsComparison(t TokenType) bool {
	switch t {
	case LESS, LESS_EQ, GREATER, GREATER_EQ, EQUAL, NOT_EQUAL:
		return true
	}
	return false
}

// IsBoolean reports whether t can only appear inside a boolean expression.
func IsBoolean(t TokenType) bool {
	return IsComparison(t) || t == AND || t == OR || t == NOT
}
