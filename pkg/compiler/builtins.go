package compiler

import "fmt"

// Library names a group of built-in operations a program can import.
type Library = string

const (
	Stdio    Library = "Stdio"
	String   Library = "String"
	Random   Library = "Random"
	Math     Library = "Math"
	Arrays   Library = "Arrays"
	Number   Library = "Number"
	FileUtil Library = "FileUtil"

	// This calls functions from the Functions section. It is never imported.
	This Library = "This"
)

// builtin is a fixed Python template. Arguments are substituted with indexed
// verbs, %[1]s being the first rendered argument.
type builtin struct {
	arity    int
	template string
}

func (b builtin) expand(args []string) string {
	if b.arity == 0 {
		return b.template
	}
	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a
	}
	return fmt.Sprintf(b.template, values...)
}

var builtins = map[Library]map[string]builtin{
	Stdio: {
		"inINT":    {0, "int(input())"},
		"inSTRING": {0, "input()"},
		"out":      {1, "print(%[1]s)"},
	},
	String: {
		"equals":          {2, "%[1]s == %[2]s"},
		"append":          {2, "%[1]s = %[1]s + %[2]s"},
		"size":            {1, "len(%[1]s)"},
		"get":             {2, "%[1]s[int(%[2]s)]"},
		"notEqual":        {2, "%[1]s != %[2]s"},
		"isDigit":         {1, "int(%[1]s.isdigit())"},
		"isLetter":        {1, "int(%[1]s.isalpha())"},
		"isSpace":         {1, "int(%[1]s.isspace())"},
		"isInterpunction": {1, "int(%[1]s in [',', '.', ':', '?', '!', ';'])"},
		"substring":       {3, "%[1]s[%[2]s:%[3]s]"},
		"toUpper":         {1, "%[1]s.upper()"},
	},
	Random: {
		"range": {2, "random.randrange(int(%[1]s), int(%[2]s))"},
	},
	Math: {
		"sqrt": {1, "math.sqrt(%[1]s)"},
	},
	Arrays: {
		"init":   {1, "%[1]s = []"},
		"append": {2, "%[1]s.append(%[2]s)"},
		"size":   {1, "len(%[1]s)"},
		"get":    {2, "%[1]s[int(%[2]s)]"},
	},
	Number: {
		"isInteger": {1, "float.is_integer(%[1]s)"},
		"toString":  {1, "str(%[1]s)"},
	},
	FileUtil: {
		"read": {1, "open(%[1]s, 'r').read()"},
	},
}

func lookupBuiltin(lib Library, name string) (builtin, bool) {
	ops, ok := builtins[lib]
	if !ok {
		return builtin{}, false
	}
	op, ok := ops[name]
	return op, ok
}

// Operations returns the operation names of a library and their arity.
func Operations(lib Library) map[string]int {
	ops := make(map[string]int, len(builtins[lib]))
	for name, op := range builtins[lib] {
		ops[name] = op.arity
	}
	return ops
}
