package main

import (
	"fmt"
	"io"
	"nonek/pkg/version"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newInstallCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "install failed: %v\n", err)
		os.Exit(1)
	}
}

func newInstallCmd() *cobra.Command {
	var (
		targetDir string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:           "installer",
		Short:         "Build the nonek CLI with version metadata and copy it onto the PATH",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("unable to determine working directory: %w", err)
			}
			if targetDir == "" {
				targetDir = defaultInstallDir()
			}

			name := binaryName(runtime.GOOS)
			buildOutput := filepath.Join(repoRoot, name)
			build := buildArgs(buildOutput, gitCommit(repoRoot), time.Now().UTC().Format(time.RFC3339))
			destPath := filepath.Join(targetDir, name)

			w := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(w, "go %s\n", strings.Join(build, " "))
				fmt.Fprintf(w, "install %s\n", destPath)
				return nil
			}

			fmt.Fprintln(w, "Building nonek CLI...")
			buildCmd := exec.Command("go", build...)
			buildCmd.Stdout = os.Stdout
			buildCmd.Stderr = os.Stderr
			buildCmd.Dir = repoRoot
			if err := buildCmd.Run(); err != nil {
				return fmt.Errorf("go build failed: %w", err)
			}
			defer os.Remove(buildOutput)

			if err := os.MkdirAll(targetDir, 0o755); err != nil {
				return fmt.Errorf("unable to create install directory: %w", err)
			}
			fmt.Fprintf(w, "Installing to %s\n", destPath)
			if err := copyFile(buildOutput, destPath); err != nil {
				return fmt.Errorf("failed to copy binary (try running with elevated permissions): %w", err)
			}
			if runtime.GOOS != "windows" {
				if err := os.Chmod(destPath, 0o755); err != nil {
					return fmt.Errorf("failed to set executable bit: %w", err)
				}
			}

			fmt.Fprintln(w, "nonek installed. Run 'nonek version' to verify it is on your PATH.")
			return nil
		},
	}
	cmd.Flags().StringVar(&targetDir, "path", "", "custom install directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the build command and target without running them")
	return cmd
}

func binaryName(goos string) string {
	if goos == "windows" {
		return "nonek.exe"
	}
	return "nonek"
}

// buildArgs stamps version metadata into pkg/version at link time.
func buildArgs(output, commit, date string) []string {
	pkg := "nonek/pkg/version"
	ldflags := fmt.Sprintf("-X %s.Version=%s -X %s.GitCommit=%s -X %s.BuildDate=%s",
		pkg, version.Version, pkg, commit, pkg, date)
	return []string{"build", "-ldflags", ldflags, "-o", output, "./cmd/nonek"}
}

func gitCommit(dir string) string {
	out, err := exec.Command("git", "-C", dir, "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "none"
	}
	return strings.TrimSpace(string(out))
}

func defaultInstallDir() string {
	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, "Programs", "nonek")
		}
		return filepath.Join(os.TempDir(), "nonek")
	default:
		return "/usr/local/bin"
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
