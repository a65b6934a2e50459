package main

import (
	"fmt"
	"nonek/pkg/diag"
	"nonek/pkg/parser"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_parser '<code>'")
		os.Exit(1)
	}

	input := os.Args[1]
	program, err := parser.Parse(input)
	if err != nil {
		fmt.Println("Parser error:")
		fmt.Printf("  %s\n", diag.WithSource(err, "<input>", input))
		os.Exit(1)
	}

	fmt.Printf("AST:\n%s\n", program.String())
}
