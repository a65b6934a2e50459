// Package diag turns positional errors into source snippets.
package diag

import (
	"errors"
	"fmt"
	"nonek/pkg/compiler"
	"nonek/pkg/lexer"
	"nonek/pkg/parser"
	"strings"
)

// Positional is implemented by every error that knows its source line.
type Positional interface {
	error
	SourceLine() int
	Reason() string
}

// Error is a positional error together with the source it refers to.
type Error struct {
	Err     error
	Kind    string
	Name    string
	Line    int
	Reason  string
	Snippet string
}

func (e *Error) Error() string {
	if e.Snippet == "" {
		return e.Header()
	}
	return e.Header() + "\n" + e.Snippet
}

func (e *Error) Header() string {
	return fmt.Sprintf("%s ERROR in %s at line %d: %s", e.Kind, e.Name, e.Line, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind names the compilation stage that produced err.
func Kind(err error) string {
	var lexErr *lexer.Error
	var parseErr *parser.Error
	var semErr *compiler.SemanticError
	switch {
	case errors.As(err, &lexErr):
		return "LEXICAL"
	case errors.As(err, &parseErr):
		return "SYNTAX"
	case errors.As(err, &semErr):
		return "SEMANTIC"
	}
	return ""
}

// Line returns the source line of err, or 0 if it has none.
func Line(err error) int {
	var p Positional
	if errors.As(err, &p) {
		return p.SourceLine()
	}
	return 0
}

// WithSource attaches a snippet of src around the line of err. Errors
// without a position are returned unchanged.
func WithSource(err error, name, src string) error {
	var p Positional
	if err == nil || !errors.As(err, &p) {
		return err
	}
	return &Error{
		Err:     err,
		Kind:    Kind(err),
		Name:    name,
		Line:    p.SourceLine(),
		Reason:  p.Reason(),
		Snippet: Snippet(src, p.SourceLine()),
	}
}

// Snippet renders line and one line of context on each side with a numbered
// gutter and a caret under the first non-blank column of line.
func Snippet(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	first := max(line-1, 1)
	last := min(line+1, len(lines))
	width := len(fmt.Sprint(last))

	var out strings.Builder
	for n := first; n <= last; n++ {
		text := strings.TrimRight(lines[n-1], "\r")
		fmt.Fprintf(&out, "%*d | %s\n", width, n, text)
		if n == line {
			indent := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
			fmt.Fprintf(&out, "%*s | %s^\n", width, "", indent)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}
