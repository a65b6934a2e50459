package main

import (
	"fmt"
	"io"
	"log/slog"
	"nonek/pkg/ast"
	"nonek/pkg/compiler"
	"nonek/pkg/config"
	"nonek/pkg/diag"
	"nonek/pkg/parser"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, renderError(err))
		return 1
	}
	return 0
}

// app carries state shared by all subcommands.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "nonek",
		Short: "nonek front end: Python generator and syntax tree exporter",
		Long: `nonek reads programs made of Libraries, Functions and Execution
sections and translates them to Python, or exports their syntax tree
as a Graphviz graph.

Configuration is read from nonek.toml or nonek.yaml, a .env file and
NONEK_* environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./nonek.toml or ./nonek.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.pythonCmd(),
		a.dotCmd(),
		a.tokensCmd(),
		a.astCmd(),
		a.inspectCmd(),
		a.checkCmd(),
		a.batchCmd(),
		a.goldenCmd(),
		a.replCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	level, _ := cfg.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if cfg.FilePath() != "" {
		a.logger.Debug("config loaded", "path", cfg.FilePath())
	}
	return nil
}

func (a *app) compilerOptions(cmd *cobra.Command) compiler.Options {
	opts := a.cfg.CompilerOptions()
	flags := cmd.Flags()
	if flags.Changed("lenient") {
		opts.LenientOperations, _ = flags.GetBool("lenient")
	}
	if flags.Changed("fold") {
		opts.FoldConstants, _ = flags.GetBool("fold")
	}
	return opts
}

func readSource(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	return string(content), nil
}

func parseProgramFromFile(filename string) (*ast.Program, string, error) {
	src, err := readSource(filename)
	if err != nil {
		return nil, "", err
	}
	program, err := parser.Parse(src)
	if err != nil {
		return nil, src, diag.WithSource(err, filename, src)
	}
	return program, src, nil
}

// writeOutput writes out to path, or to w when path is empty.
func writeOutput(w io.Writer, path, out string) error {
	if path == "" {
		_, err := io.WriteString(w, out)
		return err
	}
	return os.WriteFile(path, []byte(out), 0o644)
}
