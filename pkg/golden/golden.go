// Package golden reads front end test cases from Markdown documents and
// checks them against the lexer, the Python generator and the DOT exporter.
//
// A case starts at a "Test: <name>" heading and holds one nonek fence with
// the source plus one or more assertion fences:
//
//	python  generated Python without the module header
//	dot     the complete graph description
//	tokens  the token dump
//	error   lines that must each appear in the rendered diagnostic
package golden

import (
	"bytes"
	"fmt"
	"nonek/pkg/compiler"
	"nonek/pkg/diag"
	"nonek/pkg/dot"
	"nonek/pkg/lexer"
	"nonek/pkg/pycheck"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const SourceFence = "nonek"

// AssertionType is the language of an assertion fence.
type AssertionType string

const (
	AssertionPython AssertionType = "python"
	AssertionDot    AssertionType = "dot"
	AssertionTokens AssertionType = "tokens"
	AssertionError  AssertionType = "error"
)

type Assertion struct {
	Type    AssertionType
	Content string
	Line    int // first content line of the fence in the Markdown document
}

type Case struct {
	Name       string
	Source     string
	Line       int
	Assertions []Assertion
}

// Mismatch reports an assertion whose expectation differs from the output.
type Mismatch struct {
	Case     string
	Type     AssertionType
	Line     int
	Expected string
	Got      string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("line %d: %s assertion of %q failed\nexpected:\n%s\ngot:\n%s",
		m.Line, m.Type, m.Case, m.Expected, m.Got)
}

// Extract parses a Markdown document and returns its test cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case
	var hasSource bool

	finish := func() error {
		if current == nil {
			return nil
		}
		if !hasSource {
			return fmt.Errorf("test %q has no %s fence", current.Name, SourceFence)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("test %q has no assertion fences", current.Name)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := headingText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Test: "),
				Line: lineOf(n, markdown),
			}
			hasSource = false

		case *ast.FencedCodeBlock:
			language := string(n.Language(markdown))
			line := lineOf(n, markdown)
			if language == "" {
				return ast.WalkContinue, nil
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, language)
			}

			content := fenceContent(n, markdown)
			switch AssertionType(language) {
			case AssertionPython, AssertionDot, AssertionTokens, AssertionError:
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(language),
					Content: strings.TrimRight(content, "\n"),
					Line:    line,
				})
			default:
				if language != SourceFence {
					return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, language, current.Name)
				}
				if hasSource {
					return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test %q", line, SourceFence, current.Name)
				}
				current.Source = content
				hasSource = true
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

// Check runs every assertion of c and returns one error per failure.
func Check(c Case, opts compiler.Options) []error {
	var errs []error
	for _, a := range c.Assertions {
		got, err := run(a.Type, c.Source, opts)

		if a.Type == AssertionError {
			if err == nil {
				errs = append(errs, &Mismatch{Case: c.Name, Type: a.Type, Line: a.Line, Expected: a.Content, Got: got})
				continue
			}
			rendered := diag.WithSource(err, c.Name, c.Source).Error()
			for _, want := range strings.Split(a.Content, "\n") {
				if !strings.Contains(rendered, want) {
					errs = append(errs, &Mismatch{Case: c.Name, Type: a.Type, Line: a.Line, Expected: a.Content, Got: rendered})
					break
				}
			}
			continue
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %s assertion of %q: %w", a.Line, a.Type, c.Name, err))
			continue
		}
		if a.Type == AssertionPython {
			if err := pycheck.Validate(got); err != nil {
				errs = append(errs, fmt.Errorf("line %d: generated python of %q: %w", a.Line, c.Name, err))
				continue
			}
			got = strings.TrimPrefix(got, compiler.Header)
		}
		if got = strings.TrimRight(got, "\n"); got != a.Content {
			errs = append(errs, &Mismatch{Case: c.Name, Type: a.Type, Line: a.Line, Expected: a.Content, Got: got})
		}
	}
	return errs
}

// run produces the output an assertion of type typ is compared with. Error
// assertions check the Python pipeline.
func run(typ AssertionType, src string, opts compiler.Options) (string, error) {
	switch typ {
	case AssertionDot:
		return dot.Compile(src)
	case AssertionTokens:
		return lexer.Dump(src)
	default:
		return compiler.Compile(src, opts)
	}
}

func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
