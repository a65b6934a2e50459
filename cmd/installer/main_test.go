package main

import (
	"bytes"
	"nonek/pkg/version"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestBuildArgs(t *testing.T) {
	args := buildArgs("/tmp/nonek", "abc123", "2026-01-02T03:04:05Z")
	be.Equal(t, args[0], "build")
	be.Equal(t, args[len(args)-1], "./cmd/nonek")
	be.True(t, strings.Contains(args[2], "nonek/pkg/version.GitCommit=abc123"))
	be.True(t, strings.Contains(args[2], "nonek/pkg/version.Version="+version.Version))
}

func TestBinaryName(t *testing.T) {
	be.Equal(t, binaryName("windows"), "nonek.exe")
	be.Equal(t, binaryName("linux"), "nonek")
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	cmd := newInstallCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", "--path", dir})

	be.Err(t, cmd.Execute(), nil)
	be.True(t, strings.Contains(out.String(), "go build -ldflags"))
	be.True(t, strings.Contains(out.String(), "install "+filepath.Join(dir, "nonek")))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	be.Err(t, os.WriteFile(src, []byte("binary"), 0o644), nil)

	be.Err(t, copyFile(src, dst), nil)
	got, err := os.ReadFile(dst)
	be.Err(t, err, nil)
	be.Equal(t, string(got), "binary")
}
