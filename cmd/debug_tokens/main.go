package main

import (
	"fmt"
	"nonek/pkg/lexer"
	"nonek/pkg/token"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_tokens '<code>'")
		os.Exit(1)
	}

	input := os.Args[1]
	l := lexer.New(input)

	fmt.Printf("Input: %s\n\n", input)
	fmt.Println("Tokens:")
	fmt.Println("-------")

	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			fmt.Printf("\n%s\n", l.Err())
			os.Exit(1)
		}
		fmt.Printf("%-15s %-20s (line %d)\n", tok.Type, fmt.Sprintf("'%s'", tok.Literal), l.Line())

		if tok.Type == token.EOF {
			break
		}
	}
}
