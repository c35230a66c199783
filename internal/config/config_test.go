package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/snap"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_ValidAndBindsEveryPosition(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	for _, pos := range snap.Positions() {
		if cfg.Bindings[string(pos)] == "" {
			t.Fatalf("expected a default binding for %s", pos)
		}
	}
	table, err := cfg.HotkeyTable()
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	if table.Len() != len(snap.Positions()) {
		t.Fatalf("expected %d bindings, got %d", len(snap.Positions()), table.Len())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" || !res.Config.Watch {
		t.Fatalf("unexpected defaults: %+v", res.Config)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Bindings["maximize"] != "CommandOrControl+Alt+Enter" {
		t.Fatalf("expected default maximize binding, got %q", res.Config.Bindings["maximize"])
	}
}

func TestLoadFromPath_OverridesAndDisables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"log_level: DEBUG",
		"watch: false",
		"launch_at_login: true",
		"bindings:",
		"  left_half: Super+Left",
		"  CenterThird: \"\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.Watch {
		t.Fatalf("expected watch disabled")
	}
	if !cfg.LaunchAtLogin {
		t.Fatalf("expected launch_at_login")
	}
	if cfg.Bindings["left-half"] != "Super+Left" {
		t.Fatalf("expected left-half override, got %q", cfg.Bindings["left-half"])
	}
	if _, ok := cfg.PositionBindings()[snap.CenterThird]; ok {
		t.Fatalf("expected center-third to be disabled")
	}
	if _, ok := cfg.Bindings["left_half"]; ok {
		t.Fatalf("expected binding keys to be canonical")
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "hotkey: Mod4-Mod1-t\n")

	if _, err := LoadFromPath(path); err == nil || !strings.Contains(err.Error(), "hotkey") {
		t.Fatalf("expected strict decoding error naming hotkey, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "bindings:\n  maximize: Ctrl+Alt+Nope\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "bindings.maximize" {
		t.Fatalf("expected path bindings.maximize, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !errors.Is(err, hotkeys.ErrInvalidChord) {
		t.Fatalf("expected ErrInvalidChord in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "config.yaml:2:") {
		t.Fatalf("expected file:line prefix, got %q", err.Error())
	}
}

func TestLoadFromPath_DuplicateChordRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "bindings:\n  center: CommandOrControl+Alt+Enter\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "already bound") {
		t.Fatalf("expected duplicate chord error, got %v", err)
	}
}

func TestLoadFromPath_UnknownPositionRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "bindings:\n  diagonal: Ctrl+Alt+X\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "bindings.diagonal" {
		t.Fatalf("expected bindings.diagonal validation error, got %v", err)
	}
}

func TestLoadFromPath_IncludeMergesAndFileWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf.d", "10-keys.yaml"), "bindings:\n  center: Super+C\n  maximize: Super+Enter\n")
	writeFile(t, filepath.Join(dir, "conf.d", "notes.txt"), "ignored")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\nbindings:\n  maximize: Super+M\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := res.Config.Bindings["center"]; got != "Super+C" {
		t.Fatalf("expected included center binding, got %q", got)
	}
	if got := res.Config.Bindings["maximize"]; got != "Super+M" {
		t.Fatalf("expected top-level file to win, got %q", got)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected 2 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	if _, err := LoadFromPath(a); err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "display: \":1\"\nbindings:\n  LeftHalf: Super+Left\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("unexpected display explain: %v %+v", val, src)
	}

	val, src, err = Explain(res, "bindings.left_half")
	if err != nil {
		t.Fatalf("explain binding: %v", err)
	}
	if val != "Super+Left" || src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("unexpected binding explain: %v %+v", val, src)
	}

	val, src, err = Explain(res, "log_level")
	if err != nil {
		t.Fatalf("explain log_level: %v", err)
	}
	if val != "info" || src.Kind != SourceDefault {
		t.Fatalf("expected default log_level, got %v %+v", val, src)
	}

	if _, _, err := Explain(res, "gap_size"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Bindings["center"] = "Super+C"
	cfg.LogLevel = "warn"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if res.Config.Bindings["center"] != "Super+C" || res.Config.LogLevel != "warn" {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.SaveTo(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	cp.Bindings["center"] = "Super+C"
	cp.LogLevel = "debug"

	if cfg.Bindings["center"] == "Super+C" || cfg.LogLevel == "debug" {
		t.Fatalf("clone shares state with original")
	}
	if cp.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cp.SlogLevel())
	}
	if (&Config{LogLevel: "warning"}).SlogLevel() != slog.LevelWarn {
		t.Fatalf("expected warning to map to warn")
	}
}

func TestFileStore_SetBinding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := FileStore{Path: path}

	if err := store.SetBinding("LeftHalf", "Super+H"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetBinding("maximize", ""); err != nil {
		t.Fatalf("unbind: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := res.Config.Bindings["left-half"]; got != "Super+H" {
		t.Fatalf("expected left-half Super+H, got %q", got)
	}
	if _, ok := res.Config.PositionBindings()[snap.Maximize]; ok {
		t.Fatalf("expected maximize disabled")
	}

	if err := store.SetBinding("center", "Super+H"); err == nil || !strings.Contains(err.Error(), "already bound") {
		t.Fatalf("expected duplicate chord error, got %v", err)
	}
	if err := store.SetBinding("diagonal", "Super+D"); !errors.Is(err, snap.ErrUnknownPosition) {
		t.Fatalf("expected ErrUnknownPosition, got %v", err)
	}
}
