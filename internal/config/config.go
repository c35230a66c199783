package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/snap"
)

// Config is the effective daemon configuration.
type Config struct {
	LogLevel      string            `yaml:"log_level"`
	Watch         bool              `yaml:"watch"`
	LaunchAtLogin bool              `yaml:"launch_at_login"`
	Display       string            `yaml:"display,omitempty"`
	XAuthority    string            `yaml:"xauthority,omitempty"`
	Bindings      map[string]string `yaml:"bindings"`
}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// DefaultBindings returns the stock chord for every position.
func DefaultBindings() map[string]string {
	return map[string]string{
		string(snap.LeftHalf):       "CommandOrControl+Alt+Left",
		string(snap.RightHalf):      "CommandOrControl+Alt+Right",
		string(snap.TopHalf):        "CommandOrControl+Alt+Up",
		string(snap.BottomHalf):     "CommandOrControl+Alt+Down",
		string(snap.TopLeft):        "CommandOrControl+Alt+U",
		string(snap.TopRight):       "CommandOrControl+Alt+I",
		string(snap.BottomLeft):     "CommandOrControl+Alt+J",
		string(snap.BottomRight):    "CommandOrControl+Alt+K",
		string(snap.LeftThird):      "CommandOrControl+Alt+D",
		string(snap.CenterThird):    "CommandOrControl+Alt+F",
		string(snap.RightThird):     "CommandOrControl+Alt+G",
		string(snap.LeftTwoThirds):  "CommandOrControl+Alt+E",
		string(snap.RightTwoThirds): "CommandOrControl+Alt+R",
		string(snap.Center):         "CommandOrControl+Alt+C",
		string(snap.Maximize):       "CommandOrControl+Alt+Enter",
	}
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Watch:    true,
		Bindings: DefaultBindings(),
	}
}

// DefaultConfigPath returns <user config dir>/snapwindow/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "snapwindow", "config.yaml"), nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Bindings = maps.Clone(c.Bindings)
	if out.Bindings == nil {
		out.Bindings = make(map[string]string)
	}
	return &out
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PositionBindings returns the bindings keyed by position, ready for
// hotkeys.NewTable. Disabled positions are omitted.
func (c *Config) PositionBindings() map[snap.Position]string {
	out := make(map[snap.Position]string, len(c.Bindings))
	for key, chord := range c.Bindings {
		if strings.TrimSpace(chord) == "" {
			continue
		}
		out[snap.Position(key)] = chord
	}
	return out
}

// HotkeyTable builds the dispatch table for the configured bindings.
func (c *Config) HotkeyTable() (*hotkeys.Table, error) {
	return hotkeys.NewTable(c.PositionBindings())
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the log level and every binding. Binding keys must be
// canonical position names; chords must parse and be unique.
func (c *Config) Validate() error {
	if !contains(validLogLevels, c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: %s", strings.Join(validLogLevels, ", "))}
	}
	if c.Bindings == nil {
		return &ValidationError{Path: "bindings", Err: fmt.Errorf("bindings must not be null")}
	}

	keys := make([]string, 0, len(c.Bindings))
	for key := range c.Bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	owners := make(map[string]string)
	for _, key := range keys {
		path := "bindings." + key
		if !snap.Position(key).Valid() {
			return &ValidationError{Path: path, Err: fmt.Errorf("unknown position %q", key)}
		}
		text := strings.TrimSpace(c.Bindings[key])
		if text == "" {
			continue
		}
		chord, err := hotkeys.ParseChord(text)
		if err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		id := chord.String()
		if prev, dup := owners[id]; dup {
			return &ValidationError{Path: path, Err: fmt.Errorf("chord %s is already bound to %s", id, prev)}
		}
		owners[id] = key
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
