// Package batch compiles every source file of a directory concurrently,
// writing a graph description and a Python module per file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"nonek/pkg/compiler"
	"nonek/pkg/diag"
	"nonek/pkg/dot"
	"nonek/pkg/parser"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Options struct {
	OutputDir string
	Extension string
	Workers   int
	// Render is a command such as "dot -Tpng". It is run as
	// "<render> -o <name>.png <name>.dot". Empty disables rendering.
	Render   string
	Compiler compiler.Options
	Logger   *slog.Logger
}

// Result is the outcome for one source file.
type Result struct {
	Source    string
	Name      string
	DotPath   string
	PyPath    string
	ImagePath string
	Err       error
}

type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins all per-file errors, or returns nil if every file succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Sources lists the files in dir with the given extension, sorted by name.
func Sources(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Run compiles every source in dir. A failing file does not stop the
// others; its error is recorded in the report. The returned error is only
// set when the run itself could not start.
func Run(ctx context.Context, dir string, opts Options) (*Report, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = dir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	report := &Report{RunID: uuid.New().String()}
	logger = logger.With("run", report.RunID)
	start := time.Now()

	files, err := Sources(dir, opts.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	logger.Info("batch started", "dir", dir, "files", len(files), "workers", opts.Workers)

	report.Results = make([]Result, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := compileFile(ctx, files[i], opts)
				if res.Err != nil {
					logger.Warn("compile failed", "file", res.Source, "error", res.Err)
				} else {
					logger.Debug("compiled", "file", res.Source, "python", res.PyPath, "dot", res.DotPath)
				}
				report.Results[i] = res
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report.Duration = time.Since(start)
	logger.Info("batch finished", "files", len(files), "failed", len(report.Failed()), "duration", report.Duration)
	return report, nil
}

func compileFile(ctx context.Context, path string, opts Options) Result {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := Result{Source: path, Name: name}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	src := string(content)

	program, err := parser.Parse(src)
	if err != nil {
		res.Err = diag.WithSource(err, path, src)
		return res
	}

	graph, err := dot.New().Export(program)
	if err != nil {
		res.Err = err
		return res
	}

	g := compiler.GetGenerator(opts.Compiler)
	python, genErr := g.Generate(program)
	compiler.PutGenerator(g)

	outDir := filepath.Join(opts.OutputDir, name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		res.Err = err
		return res
	}

	res.DotPath = filepath.Join(outDir, name+".dot")
	if err := os.WriteFile(res.DotPath, []byte(graph), 0o644); err != nil {
		res.Err = err
		return res
	}

	if opts.Render != "" {
		res.ImagePath = filepath.Join(outDir, name+".png")
		if err := render(ctx, opts.Render, res.DotPath, res.ImagePath); err != nil {
			res.Err = err
			return res
		}
	}

	// The graph is written even when generation fails semantically.
	if genErr != nil {
		res.Err = diag.WithSource(genErr, path, src)
		return res
	}
	res.PyPath = filepath.Join(outDir, name+".py")
	if err := os.WriteFile(res.PyPath, []byte(python), 0o644); err != nil {
		res.Err = err
	}
	return res
}

func render(ctx context.Context, command, dotPath, imagePath string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return fmt.Errorf("render %s: render command %q is blank", dotPath, command)
	}
	args := append(fields[1:], "-o", imagePath, dotPath)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("render %s: %w: %s", dotPath, err, strings.TrimSpace(string(out)))
	}
	return nil
}
