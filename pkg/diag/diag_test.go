package diag

import (
	"errors"
	"nonek/pkg/compiler"
	"nonek/pkg/parser"
	"testing"

	"github.com/nalgeon/be"
)

func TestSnippet(t *testing.T) {
	src := "Execution {\n    @Stdio.out('hi')\n}"
	expected := "1 | Execution {\n" +
		"2 |     @Stdio.out('hi')\n" +
		"  |     ^\n" +
		"3 | }"
	be.Equal(t, Snippet(src, 2), expected)

	be.Equal(t, Snippet(src, 1), "1 | Execution {\n  | ^\n2 |     @Stdio.out('hi')")
	be.Equal(t, Snippet(src, 0), "")
	be.Equal(t, Snippet(src, 9), "")
}

func TestSnippetGutterWidth(t *testing.T) {
	src := "a\nb\nc\nd\ne\nf\ng\nh\ni\n\tj\nk"
	expected := " 9 | i\n" +
		"10 | \tj\n" +
		"   | \t^\n" +
		"11 | k"
	be.Equal(t, Snippet(src, 10), expected)
}

func TestWithSource(t *testing.T) {
	src := "Execution {\n    @Stdio.out('hi')\n}"
	_, err := compiler.Compile(src, compiler.Options{})

	wrapped := WithSource(err, "hello.nk", src)
	var d *Error
	be.True(t, errors.As(wrapped, &d))
	be.Equal(t, d.Kind, "SEMANTIC")
	be.Equal(t, d.Line, 2)
	be.Equal(t, d.Header(), "SEMANTIC ERROR in hello.nk at line 2: unimported library: library Stdio is not imported")
	be.True(t, errors.Is(wrapped, compiler.ErrUnimportedLibrary))
	be.Equal(t, Line(wrapped), 2)
}

func TestKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind string
		line int
	}{
		{"Execution {\n $\n}", "LEXICAL", 2},
		{"Execution {\n\n INT\n}", "SYNTAX", 4},
		{"Execution {\n #x = 1\n}", "SEMANTIC", 2},
	}

	for i, tt := range tests {
		_, err := compiler.Compile(tt.src, compiler.Options{})
		if got := Kind(err); got != tt.kind {
			t.Fatalf("tests[%d] - Kind wrong. expected=%s, got=%s (%v)", i, tt.kind, got, err)
		}
		be.Equal(t, Line(err), tt.line)
	}
}

func TestNonPositionalPassThrough(t *testing.T) {
	plain := errors.New("disk on fire")
	be.Equal(t, WithSource(plain, "x.nk", "src"), plain)
	be.Err(t, WithSource(nil, "x.nk", "src"), nil)
	be.Equal(t, Kind(plain), "")
	be.Equal(t, Line(plain), 0)

	var parseErr *parser.Error
	be.True(t, !errors.As(plain, &parseErr))
}
