// Package pycheck parses generated Python with gpython to prove it is
// syntactically valid. Nothing is executed.
package pycheck

import (
	"fmt"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

func parse(src string) (*ast.Module, error) {
	mod, err := parser.Parse(strings.NewReader(src), "<generated>", py.ExecMode)
	if err != nil {
		return nil, fmt.Errorf("generated python does not parse: %w", err)
	}
	module, ok := mod.(*ast.Module)
	if !ok {
		return nil, fmt.Errorf("expected *ast.Module, got %T", mod)
	}
	return module, nil
}

// Validate reports whether src is a syntactically valid Python module.
func Validate(src string) error {
	_, err := parse(src)
	return err
}

// Functions returns the names of the top-level function definitions in src.
func Functions(src string) ([]string, error) {
	module, err := parse(src)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, stmt := range module.Body {
		if def, ok := stmt.(*ast.FunctionDef); ok {
			names = append(names, string(def.Name))
		}
	}
	return names, nil
}
