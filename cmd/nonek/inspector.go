package main

import (
	"fmt"
	"io"
	"nonek/pkg/ast"
	"sort"
	"strings"
)

type ProgramInsights struct {
	Libraries []string
	Functions []FunctionInfo
	Calls     []CallInfo
}

type FunctionInfo struct {
	Name       string
	Parameters []string
	ReturnType string
	Line       int
}

// CallInfo counts the calls of one target, "Library.operation" or
// "This.function".
type CallInfo struct {
	Target string
	Count  int
	Lines  []int
}

func analyzeProgram(program *ast.Program) ProgramInsights {
	insights := ProgramInsights{}
	seenLibraries := map[string]bool{}
	calls := map[string]*CallInfo{}

	ast.Inspect(program, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.LibraryImport:
			if !seenLibraries[n.Name] {
				seenLibraries[n.Name] = true
				insights.Libraries = append(insights.Libraries, n.Name)
			}
		case *ast.FunctionImpl:
			params := make([]string, 0, len(n.Params.Params))
			for _, p := range n.Params.Params {
				params = append(params, p.String())
			}
			insights.Functions = append(insights.Functions, FunctionInfo{
				Name:       n.Name,
				Parameters: params,
				ReturnType: n.Return.Type.Name,
				Line:       n.Line(),
			})
		case *ast.FunctionCall:
			target := n.Library + "." + n.Name
			info, ok := calls[target]
			if !ok {
				info = &CallInfo{Target: target}
				calls[target] = info
			}
			info.Count++
			info.Lines = append(info.Lines, n.Line())
		}
		return true
	})

	for _, info := range calls {
		insights.Calls = append(insights.Calls, *info)
	}
	sort.Slice(insights.Calls, func(i, j int) bool {
		return insights.Calls[i].Target < insights.Calls[j].Target
	})
	return insights
}

func inspectFile(w io.Writer, filename string) error {
	program, _, err := parseProgramFromFile(filename)
	if err != nil {
		return err
	}
	printInsights(w, analyzeProgram(program))
	return nil
}

func printInsights(w io.Writer, insights ProgramInsights) {
	fmt.Fprintln(w, "Libraries:")
	if len(insights.Libraries) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, lib := range insights.Libraries {
		fmt.Fprintf(w, "  %s\n", lib)
	}

	fmt.Fprintln(w, "Functions:")
	if len(insights.Functions) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, fn := range insights.Functions {
		fmt.Fprintf(w, "  %s(%s) -> %s  (line %d)\n", fn.Name, strings.Join(fn.Parameters, ", "), fn.ReturnType, fn.Line)
	}

	fmt.Fprintln(w, "Calls:")
	if len(insights.Calls) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, call := range insights.Calls {
		lines := make([]string, len(call.Lines))
		for i, l := range call.Lines {
			lines[i] = fmt.Sprint(l)
		}
		fmt.Fprintf(w, "  %s x%d  (lines %s)\n", call.Target, call.Count, strings.Join(lines, ", "))
	}
}

func printProgramAST(w io.Writer, filename string) error {
	program, _, err := parseProgramFromFile(filename)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, program.String())
	return err
}
