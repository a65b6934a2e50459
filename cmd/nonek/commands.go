package main

import (
	"context"
	"errors"
	"fmt"
	"nonek/pkg/batch"
	"nonek/pkg/compiler"
	"nonek/pkg/diag"
	"nonek/pkg/dot"
	"nonek/pkg/golden"
	"nonek/pkg/lexer"
	"nonek/pkg/playground"
	"nonek/pkg/pycheck"
	"nonek/pkg/version"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

func (a *app) pythonCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "python <file>",
		Short: "Translate a program to Python",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, src, err := parseProgramFromFile(args[0])
			if err != nil {
				return err
			}
			g := compiler.New(a.compilerOptions(cmd))
			out, err := g.Generate(program)
			if err != nil {
				return diag.WithSource(err, args[0], src)
			}
			a.logger.Debug("generated python", "file", args[0], "functions", len(g.Functions()))
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().Bool("lenient", false, "skip calls to unknown library operations")
	cmd.Flags().Bool("fold", false, "fold constant integer expressions")
	return cmd
}

func (a *app) dotCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Export the syntax tree as a Graphviz graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, _, err := parseProgramFromFile(args[0])
			if err != nil {
				return err
			}
			out, err := dot.New().Export(program)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			out, err := lexer.Dump(src)
			if err != nil {
				return diag.WithSource(err, args[0], src)
			}
			return writeOutput(cmd.OutOrStdout(), "", out)
		},
	}
}

func (a *app) astCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the parsed program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printProgramAST(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize imports, functions and calls of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectFile(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate programs and the Python generated from them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.compilerOptions(cmd)
			var errs []error
			for _, file := range args {
				if err := checkFile(file, opts); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("ok"), file)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().Bool("lenient", false, "skip calls to unknown library operations")
	return cmd
}

func checkFile(file string, opts compiler.Options) error {
	src, err := readSource(file)
	if err != nil {
		return err
	}
	out, err := compiler.Compile(src, opts)
	if err != nil {
		return diag.WithSource(err, file, src)
	}
	if err := pycheck.Validate(out); err != nil {
		return fmt.Errorf("%s: generated python is invalid: %w", file, err)
	}
	return nil
}

func (a *app) batchCmd() *cobra.Command {
	var (
		outputDir string
		workers   int
		render    string
		extension string
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Compile every program of a directory to Python and DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := batch.Options{
				OutputDir: a.cfg.Batch.OutputDir,
				Extension: a.cfg.Batch.Extension,
				Workers:   a.cfg.Batch.Workers,
				Render:    a.cfg.Batch.Render,
				Compiler:  a.compilerOptions(cmd),
				Logger:    a.logger,
			}
			flags := cmd.Flags()
			if flags.Changed("out") {
				opts.OutputDir = outputDir
			}
			if flags.Changed("workers") {
				opts.Workers = workers
			}
			if flags.Changed("render") {
				opts.Render = render
			}
			if flags.Changed("ext") {
				opts.Extension = extension
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := batch.Run(ctx, args[0], opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, res := range report.Results {
				if res.Err != nil {
					fmt.Fprintf(w, "%s %s\n", failStyle.Render("FAIL"), res.Source)
					continue
				}
				fmt.Fprintf(w, "%s %s -> %s\n", okStyle.Render("ok  "), res.Source, res.PyPath)
			}
			fmt.Fprintf(w, "%d files, %d failed (run %s)\n", len(report.Results), len(report.Failed()), report.RunID)
			return report.Err()
		},
	}
	cmd.Flags().StringVar(&outputDir, "out", "", "output directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers")
	cmd.Flags().StringVar(&render, "render", "", `render command for graphs, e.g. "dot -Tpng"`)
	cmd.Flags().StringVar(&extension, "ext", "", "source file extension")
	cmd.Flags().Bool("lenient", false, "skip calls to unknown library operations")
	return cmd
}

func (a *app) goldenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "golden <file.md>...",
		Short: "Run Markdown test cases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			failed := 0
			total := 0
			for _, file := range args {
				content, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				cases, err := golden.Extract(content)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				for _, c := range cases {
					total++
					errs := golden.Check(c, a.compilerOptions(cmd))
					if len(errs) == 0 {
						fmt.Fprintf(w, "%s %s: %s\n", okStyle.Render("PASS"), file, c.Name)
						continue
					}
					failed++
					fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("FAIL"), file, c.Name)
					for _, err := range errs {
						fmt.Fprintf(w, "  %s\n", err)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cases failed", failed, total)
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket playground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Playground.Addr
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := playground.New(a.compilerOptions(cmd), a.logger)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	return cmd
}

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startREPL(cmd.OutOrStdout(), playground.New(a.compilerOptions(cmd), a.logger))
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, version.String())
			fmt.Fprintf(w, "  Go Version: %s\n", runtime.Version())
		},
	}
}
