package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantTmp := filepath.Join(os.TempDir(), fmt.Sprintf("snapwindow-runtime-%d", os.Getuid()))
	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	if got != wantTmp && !(runtime.GOOS == "linux" && got == wantRun) {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)
	t.Setenv(SocketEnv, "")

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != filepath.Join(td, "snapwindow.sock") {
		t.Fatalf("SocketPath() = %q, want it under %q", socket, td)
	}
}

func TestSocketPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.sock")
	t.Setenv(SocketEnv, want)

	got, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if got != want {
		t.Fatalf("SocketPath() = %q, want %q", got, want)
	}
}
