package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrUnimportedLibrary  = errors.New("unimported library")
	ErrUndefinedFunction  = errors.New("undefined function")
	ErrArityMismatch      = errors.New("arity mismatch")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrDuplicateFunction  = errors.New("duplicate function")
	ErrDuplicateVariable  = errors.New("duplicate variable")
	ErrUndefinedVariable  = errors.New("undefined variable")
	ErrReturnTypeMismatch = errors.New("return type mismatch")
	ErrUnknownOperation   = errors.New("unknown operation")
)

// SemanticError is the first rule violation found while generating. Kind is
// one of the Err sentinels above, so errors.Is works on it.
type SemanticError struct {
	Kind error
	Line int
	Msg  string

	// Expected and Found are set for arity and type mismatches.
	Expected string
	Found    string
}

func newError(kind error, line int, format string, args ...interface{}) *SemanticError {
	return &SemanticError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at line %d: %s", e.Line, e.Reason())
}

func (e *SemanticError) Reason() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *SemanticError) Unwrap() error { return e.Kind }

func (e *SemanticError) SourceLine() int { return e.Line }
