package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapwindow/internal/snap"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	log_level
//	watch
//	launch_at_login
//	display
//	xauthority
//	bindings
//	bindings.<position>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	path, value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// lookupValue resolves path against cfg and returns the canonical path with
// the value.
func lookupValue(cfg *Config, path string) (string, any, error) {
	parts := strings.Split(path, ".")
	if parts[0] != "bindings" && len(parts) != 1 {
		return "", nil, fmt.Errorf("unknown path: %s", path)
	}

	switch parts[0] {
	case "log_level":
		return path, cfg.LogLevel, nil
	case "watch":
		return path, cfg.Watch, nil
	case "launch_at_login":
		return path, cfg.LaunchAtLogin, nil
	case "display":
		return path, cfg.Display, nil
	case "xauthority":
		return path, cfg.XAuthority, nil
	case "bindings":
		switch len(parts) {
		case 1:
			return path, cfg.Bindings, nil
		case 2:
			pos, err := snap.ParsePosition(parts[1])
			if err != nil {
				return "", nil, fmt.Errorf("unknown path: %s: %w", path, err)
			}
			return "bindings." + string(pos), cfg.Bindings[string(pos)], nil
		}
	}
	return "", nil, fmt.Errorf("unknown path: %s", path)
}
