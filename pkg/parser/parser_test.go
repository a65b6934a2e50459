package parser

import (
	"errors"
	"nonek/pkg/ast"
	"nonek/pkg/lexer"
	"nonek/pkg/token"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseProgramSections(t *testing.T) {
	input := `Libraries {
    -> Stdio
    -> String
}
Functions {
    @add:(INT #a, INT #b) -> INT {
        INT #c = #a + #b
        RETURN #c
    }
    @hello:() -> VOID {
        @Stdio.out('hi')
    }
}
Execution {
    INT #x = @This.add(1, 2)
    @Stdio.out(#x)
}
`
	program, err := Parse(input)
	be.Err(t, err, nil)

	expected := []string{
		"*ast.LibraryImport", "*ast.LibraryImport",
		"*ast.FunctionImpl", "*ast.FunctionImpl",
		"*ast.VarDecl", "*ast.Assign", "*ast.FunctionCall",
	}
	if len(program.Sections) != len(expected) {
		t.Fatalf("program.Sections has %d nodes, want %d", len(program.Sections), len(expected))
	}
	for i, node := range program.Sections {
		if got := typeName(node); got != expected[i] {
			t.Fatalf("tests[%d] - node type wrong. expected=%s, got=%s", i, expected[i], got)
		}
	}

	add := program.Sections[2].(*ast.FunctionImpl)
	be.Equal(t, add.Name, "add")
	be.Equal(t, add.Line(), 6)
	be.Equal(t, add.Params.String(), "INT #a, INT #b")
	be.Equal(t, add.Return.Type.Name, "INT")
	be.Equal(t, add.Return.Value.Name, "#c")
	be.Equal(t, add.Return.Line(), 8)
	be.Equal(t, len(add.Body.Statements), 2)

	hello := program.Sections[3].(*ast.FunctionImpl)
	be.Equal(t, len(hello.Params.Params), 0)
	be.Equal(t, hello.Return.Type.Name, "VOID")
	be.True(t, hello.Return.Value == nil)

	call := program.Sections[5].(*ast.Assign).Value.(*ast.FunctionCall)
	be.Equal(t, call.Library, "This")
	be.Equal(t, call.Name, "add")
	be.Equal(t, len(call.Args), 2)
}

func TestRepeatedSectionsAndEmptyProgram(t *testing.T) {
	program, err := Parse("")
	be.Err(t, err, nil)
	be.Equal(t, len(program.Sections), 0)

	program, err = Parse("Execution { INT #a } Libraries { -> Math } Execution { INT #b }")
	be.Err(t, err, nil)
	be.Equal(t, len(program.Sections), 3)
	be.Equal(t, program.Sections[1].String(), "-> Math")
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3 - 4", "((1 + (2 * 3)) - 4)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"10 DIV 3 MOD 2", "((10 DIV 3) MOD 2)"},
		{"10 // 3 % 2", "((10 // 3) % 2)"},
		{"8 / 2 / 2", "((8 / 2) / 2)"},
		{"-#y + 1", "(-#y + 1)"},
		{"- - 1", "--1"},
		{"#a < #b", "(#a < #b)"},
		{"#a + 1 >= #b * 2", "((#a + 1) >= (#b * 2))"},
		{"(#a < 1) AND (#b >= 2)", "((#a < 1) AND (#b >= 2))"},
		{"NOT (#a == 1) OR (#b != 2)", "(NOT (#a == 1) OR (#b != 2))"},
		{"(#a < 1) AND NOT ((#b > 2) OR (#c > 3))", "((#a < 1) AND NOT ((#b > 2) OR (#c > 3)))"},
		{"'hello world'", "'hello world'"},
		{"@String.size(#s)", "@String.size(#s)"},
		{"@String.size(#s) + 1", "(@String.size(#s) + 1)"},
		{"@String.size(#s) > 3", "(@String.size(#s) > 3)"},
		{"#x < @String.size(#s)", "(#x < @String.size(#s))"},
		{"@String.get(#s, 0, 'x', word)", "@String.get(#s, 0, 'x', word)"},
	}

	for i, tt := range tests {
		program, err := Parse("Execution { #v = " + tt.input + " }")
		if err != nil {
			t.Fatalf("tests[%d] - Parse(%q) error: %v", i, tt.input, err)
		}
		assign, ok := program.Sections[0].(*ast.Assign)
		if !ok {
			t.Fatalf("tests[%d] - expected *ast.Assign, got=%T", i, program.Sections[0])
		}
		if got := assign.Value.String(); got != tt.expected {
			t.Fatalf("tests[%d] - expression wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestVarDeclarations(t *testing.T) {
	program, err := Parse("Execution { INT #a = 1 STRING #s FLOAT #f = #a DIV 2 }")
	be.Err(t, err, nil)
	be.Equal(t, len(program.Sections), 5)

	decl := program.Sections[0].(*ast.VarDecl)
	assign := program.Sections[1].(*ast.Assign)
	be.Equal(t, decl.String(), "INT #a")
	be.Equal(t, assign.String(), "#a = 1")
	be.True(t, decl.Var != assign.Var)

	be.Equal(t, program.Sections[2].String(), "STRING #s")
	be.Equal(t, program.Sections[4].String(), "#f = (#a DIV 2)")
}

func TestConditionalsAndLoops(t *testing.T) {
	input := `Execution {
    COND:(@String.equals(#a, #b)) -> { @Stdio.out(#a) }
    COND:(@String.size(#s) > 3) -> { @Stdio.out(#s) }
    LOOP:((#i < 10) AND (#j > 0)) -> {
        #i = #i + 1
        COND:(#i == 5) -> { #j = 0 }
    }
}`
	program, err := Parse(input)
	be.Err(t, err, nil)
	be.Equal(t, len(program.Sections), 3)

	first := program.Sections[0].(*ast.Conditional)
	_, isCall := first.Condition.(*ast.FunctionCall)
	be.True(t, isCall)
	be.Equal(t, first.Line(), 2)

	second := program.Sections[1].(*ast.Conditional)
	be.Equal(t, second.Condition.String(), "(@String.size(#s) > 3)")

	loop := program.Sections[2].(*ast.Loop)
	be.Equal(t, loop.Condition.String(), "((#i < 10) AND (#j > 0))")
	be.Equal(t, len(loop.Body.Statements), 2)
	be.Equal(t, loop.Body.Statements[1].Line(), 6)
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "*** header\nExecution {\n    *** note\n    INT #x *** trailing\n}\n"
	program, err := Parse(input)
	be.Err(t, err, nil)
	be.Equal(t, len(program.Sections), 1)
	be.Equal(t, program.Sections[0].Line(), 4)
}

func TestOperatorLines(t *testing.T) {
	program, err := Parse("Execution {\n#x = 1\n+\n2\n}")
	be.Err(t, err, nil)

	assign := program.Sections[0].(*ast.Assign)
	be.Equal(t, assign.Line(), 2)
	be.Equal(t, assign.Value.Line(), 3)
}

func TestLargeNumberLiteral(t *testing.T) {
	program, err := Parse("Execution { #v = 99999999999999999999 }")
	be.Err(t, err, nil)

	lit, ok := program.Sections[0].(*ast.Assign).Value.(*ast.NumberLiteral)
	if !ok {
		t.Fatalf("value is not *ast.NumberLiteral. got=%T", program.Sections[0].(*ast.Assign).Value)
	}
	be.True(t, lit.Overflow)
	be.Equal(t, lit.String(), "99999999999999999999")

	program, err = Parse("Execution { #v = 9223372036854775807 }")
	be.Err(t, err, nil)
	lit = program.Sections[0].(*ast.Assign).Value.(*ast.NumberLiteral)
	be.True(t, !lit.Overflow)
	be.Equal(t, lit.Value, int64(9223372036854775807))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input    string
		line     int
		expected string
	}{
		{"Execution {\n INT @x\n}", 2, "expected variable, but found @"},
		{"Functions {}\nFoo", 2, "expected section"},
		{"Execution {\n COND:(#x < 1) -> {\n }\n}", 3, "at least one statement in COND block"},
		{"Execution {\n LOOP:(#x < 1) -> {}\n}", 2, "at least one statement in LOOP block"},
		{"Execution {\n INT #f(INT #a)\n}", 2, "only allowed in the Functions section"},
		{"Execution {\n #x = 1\n", 3, "expected }, but found EOF"},
		{"Functions {\n @f:(INT #a) -> INT {\n RETURN #a\n #b = 1\n }\n}", 4, "expected }, but found ID"},
		{"Execution { RETURN #x }", 1, "expected }, but found RETURN"},
		{"Functions {\n @f:() -> STRING {\n RETURN foo\n }\n}", 3, "expected variable, but found ID"},
		{"Libraries { -> #io }", 1, "expected name"},
		{"Execution { #x = }", 1, "expected expression"},
		{"Execution { COND:(#x) -> { INT #y } }", 1, "expected comparison operator"},
		{"Execution { #x = (#a < 1) AND #b }", 1, "expected (, but found ID"},
		{"Execution { @Stdio.out(1 + 2) }", 1, "expected ), but found +"},
		{"Execution { 5 }", 1, "expected statement"},
	}

	for i, tt := range tests {
		_, err := Parse(tt.input)
		var parseErr *Error
		if !errors.As(err, &parseErr) {
			t.Fatalf("tests[%d] - Parse(%q) error = %v, want *parser.Error", i, tt.input, err)
		}
		if parseErr.Line != tt.line {
			t.Fatalf("tests[%d] - error line wrong. expected=%d, got=%d (%v)", i, tt.line, parseErr.Line, err)
		}
		if !strings.Contains(err.Error(), tt.expected) {
			t.Fatalf("tests[%d] - error message wrong. expected to contain %q, got=%q", i, tt.expected, err.Error())
		}
	}
}

func TestLexicalErrorsSurface(t *testing.T) {
	tests := []string{
		"Execution {\n $ }",
		"Execution {\n #x = 1 + $ }",
		"Execution {\n @Stdio.out('open)\n}",
	}

	for i, input := range tests {
		_, err := Parse(input)
		var lexErr *lexer.Error
		if !errors.As(err, &lexErr) {
			t.Fatalf("tests[%d] - Parse(%q) error = %v, want *lexer.Error", i, input, err)
		}
		be.Equal(t, lexErr.Line, 2)
	}
}

func TestSpeculativeScansRestoreState(t *testing.T) {
	tests := []struct {
		input  string
		isBool bool
		isFunc bool
	}{
		{"#x < 1\n#y = 2", true, false},
		{"1 + 2\n#y = #x < 1", false, false},
		{"NOT (#a == 1)", true, false},
		{"'text' }", false, false},
		{"INT #f (INT #a)", false, true},
		{"INT #x = 3", false, false},
		{"#a == #b", true, false},
	}

	for i, tt := range tests {
		p := New(lexer.New(tt.input))
		p.nextToken()
		before := p.save()

		if got := p.isBoolExpr(); got != tt.isBool {
			t.Fatalf("tests[%d] - isBoolExpr(%q) = %v, want %v", i, tt.input, got, tt.isBool)
		}
		be.Equal(t, p.save(), before)

		if got := p.isFunctionHeader(); got != tt.isFunc {
			t.Fatalf("tests[%d] - isFunctionHeader(%q) = %v, want %v", i, tt.input, got, tt.isFunc)
		}
		be.Equal(t, p.save(), before)

		fresh := New(lexer.New(tt.input))
		fresh.nextToken()
		for p.curToken.Type != token.EOF {
			be.Equal(t, p.curToken, fresh.curToken)
			be.Equal(t, p.curLine, fresh.curLine)
			p.nextToken()
			fresh.nextToken()
		}
		be.Equal(t, fresh.curToken.Type, token.TokenType(token.EOF))
	}
}

func typeName(n ast.Node) string {
	switch n.(type) {
	case *ast.LibraryImport:
		return "*ast.LibraryImport"
	case *ast.FunctionImpl:
		return "*ast.FunctionImpl"
	case *ast.VarDecl:
		return "*ast.VarDecl"
	case *ast.Assign:
		return "*ast.Assign"
	case *ast.FunctionCall:
		return "*ast.FunctionCall"
	}
	return "other"
}
