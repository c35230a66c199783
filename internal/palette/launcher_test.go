package palette

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func mustLauncher(t *testing.T, name string) *launcher {
	t.Helper()
	b, ok := newLauncher(name)
	if !ok {
		t.Fatalf("no launcher %q", name)
	}
	return b
}

func TestRofiFormatItem_UsesSingleNullSeparator(t *testing.T) {
	b := mustLauncher(t, "rofi")

	out := b.formatItem(Item{Label: "Left <half>", Meta: "left\x1fhalf"})

	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if out != "Left &lt;half&gt;\x00meta\x1fleft half" {
		t.Fatalf("expected escaped label and sanitized meta, got %q", out)
	}
	if plain := b.formatItem(Item{Label: "a"}); plain != "a" {
		t.Fatalf("expected no properties without meta, got %q", plain)
	}
}

func TestDmenuFormatItem_PlainText(t *testing.T) {
	b := mustLauncher(t, "dmenu")
	if out := b.formatItem(Item{Label: " a\nb ", Meta: "x"}); out != "a b" {
		t.Fatalf("expected plain sanitized label, got %q", out)
	}
}

func TestRofiBuildArgs_IndexFormat(t *testing.T) {
	args := mustLauncher(t, "rofi").buildArgs("snap")

	if !containsArgs(args, "-format", "i") {
		t.Fatalf("expected -format i in args, got %v", args)
	}
	if !containsArg(args, "-no-custom") {
		t.Fatalf("expected -no-custom in args, got %v", args)
	}
	if !containsArgs(args, "-p", "snap") {
		t.Fatalf("expected prompt, got %v", args)
	}
}

func TestFuzzelBuildArgs_Index(t *testing.T) {
	b := mustLauncher(t, "fuzzel")
	args := b.buildArgs("")
	if !containsArg(args, "--index") || containsArg(args, "--prompt") {
		t.Fatalf("unexpected fuzzel args %v", args)
	}
}

func TestParseSelection(t *testing.T) {
	items := []Item{
		{Label: "a", Value: "first"},
		{Label: "b", Value: "second"},
	}

	got, err := mustLauncher(t, "rofi").parseSelection("1", items)
	if err != nil || got.Value != "second" {
		t.Fatalf("expected second by index, got %+v, %v", got, err)
	}
	if _, err := mustLauncher(t, "fuzzel").parseSelection("5", items); err == nil {
		t.Fatalf("expected out of range error")
	}
	got, err = mustLauncher(t, "wofi").parseSelection("a", items)
	if err != nil || got.Value != "first" {
		t.Fatalf("expected first by label, got %+v, %v", got, err)
	}
	if _, err := mustLauncher(t, "dmenu").parseSelection("typed", items); err == nil {
		t.Fatalf("expected unknown selection error")
	}
}

func TestFormatInput_DisambiguatesDuplicateLabels(t *testing.T) {
	b := mustLauncher(t, "dmenu")
	items := []Item{
		{Label: "Dup", Value: "a"},
		{Label: "Dup", Value: "b"},
	}

	_ = b.formatInput(items)
	if items[0].Label != "Dup" {
		t.Fatalf("expected first label unchanged, got %q", items[0].Label)
	}
	if items[1].Label != "Dup (2)" {
		t.Fatalf("expected second label disambiguated, got %q", items[1].Label)
	}
}

func TestFormatInput_IndexBackendsKeepDuplicateLabels(t *testing.T) {
	b := mustLauncher(t, "rofi")
	items := []Item{
		{Label: "Dup", Value: "a"},
		{Label: "Dup", Value: "b"},
	}

	_ = b.formatInput(items)
	if items[0].Label != "Dup" || items[1].Label != "Dup" {
		t.Fatalf("expected labels unchanged for index backend, got %#v", items)
	}
}

func TestNewBackend_Unknown(t *testing.T) {
	if _, err := NewBackend("walker"); err == nil || !strings.Contains(err.Error(), "unknown palette backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

// fakeDmenu installs a dmenu script on an isolated PATH. Scripts may only
// use shell builtins.
func fakeDmenu(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dmenu"), []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	t.Setenv("PATH", dir)
}

func TestShow_ReturnsSelectedItem(t *testing.T) {
	fakeDmenu(t, `read -r first; read -r second; echo "$second"`)

	b, err := NewBackend("auto")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if b.Name() != "dmenu" {
		t.Fatalf("expected dmenu to be detected, got %s", b.Name())
	}
	got, err := b.Show("snap", []Item{{Label: "a", Value: "first"}, {Label: "b", Value: "second"}})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if got.Value != "second" {
		t.Fatalf("expected second, got %+v", got)
	}
}

func TestShow_CancelExit(t *testing.T) {
	fakeDmenu(t, "while read -r line; do :; done; exit 1")

	b, err := NewBackend("dmenu")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	if _, err := b.Show("", []Item{{Label: "a"}}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestShow_NoItems(t *testing.T) {
	if _, err := mustLauncher(t, "dmenu").Show("", nil); err == nil {
		t.Fatalf("expected error for empty palette")
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func containsArgs(args []string, a string, b string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == a && args[i+1] == b {
			return true
		}
	}
	return false
}
