package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapwindow/internal/snap"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw onto the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.Watch != nil {
		cfg.Watch = *raw.Watch
	}
	if raw.LaunchAtLogin != nil {
		cfg.LaunchAtLogin = *raw.LaunchAtLogin
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = strings.TrimSpace(*raw.XAuthority)
	}
	for key, chord := range raw.Bindings {
		cfg.Bindings[key] = strings.TrimSpace(chord)
	}
	return cfg, nil
}

// normalizeBindings rewrites binding keys to canonical position names so
// "left_half" in one file and "LeftHalf" in another address the same entry.
// Unknown keys are left alone for Validate to report. Source paths follow
// the rename.
func normalizeBindings(raw *RawConfig, sources map[string]Source) {
	if len(raw.Bindings) == 0 {
		return
	}
	out := make(map[string]string, len(raw.Bindings))
	for key, chord := range raw.Bindings {
		canon := key
		if pos, err := snap.ParsePosition(key); err == nil {
			canon = string(pos)
		}
		out[canon] = chord
		if canon == key {
			continue
		}
		if src, ok := sources["bindings."+key]; ok {
			delete(sources, "bindings."+key)
			sources["bindings."+canon] = src
		}
	}
	raw.Bindings = out
}
