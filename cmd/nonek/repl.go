package main

import (
	"fmt"
	"io"
	"nonek/pkg/playground"
	"nonek/pkg/version"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	PROMPT      = ">>> "
	CONT        = "... "
	historyFile = ".nonek_history"
)

const replHelp = `End a program with an empty line.
Commands:
  :python  :dot  :tokens  :ast   switch the output mode
  :quit                          leave the prompt`

func startREPL(out io.Writer, srv *playground.Server) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(out, bannerStyle.Render("nonek "+version.Version))
	fmt.Fprintln(out, replHelp)

	mode := playground.ModePython
	for {
		src, ok := readProgram(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		command := strings.TrimSpace(src)
		if command == "" {
			continue
		}
		if strings.HasPrefix(command, ":") {
			next, quit, err := replCommand(command, mode)
			if quit {
				return nil
			}
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
				continue
			}
			mode = next
			fmt.Fprintf(out, "mode: %s\n", mode)
			continue
		}

		fmt.Fprint(out, evalSource(srv, mode, src))
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readProgram collects lines until an empty line. A line starting with ":"
// is returned on its own.
func readProgram(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONT
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			// io.EOF on Ctrl-D, liner.ErrPromptAborted on Ctrl-C.
			return "", false
		}

		if b.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			return line, true
		}
		if strings.TrimSpace(line) == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// replCommand interprets a ":" command and returns the new output mode.
func replCommand(command, mode string) (string, bool, error) {
	switch name := strings.TrimPrefix(command, ":"); name {
	case "quit", "q", "exit":
		return mode, true, nil
	case playground.ModePython, playground.ModeDot, playground.ModeTokens, playground.ModeAST:
		return name, false, nil
	default:
		return mode, false, fmt.Errorf("unknown command %s", command)
	}
}

// evalSource runs one program and returns the text to print.
func evalSource(srv *playground.Server, mode, src string) string {
	resp := srv.Run(playground.Request{Mode: mode, Source: src})
	if resp.Error != "" {
		return errorStyle.Render(resp.Error) + "\n"
	}
	return resp.Output
}
