package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig mirrors one YAML file. Nil fields were not set by that file.
type RawConfig struct {
	Include       IncludeList       `yaml:"include"`
	LogLevel      *string           `yaml:"log_level"`
	Watch         *bool             `yaml:"watch"`
	LaunchAtLogin *bool             `yaml:"launch_at_login"`
	Display       *string           `yaml:"display"`
	XAuthority    *string           `yaml:"xauthority"`
	Bindings      map[string]string `yaml:"bindings"`
}

// merge overlays other onto r; bindings merge per key.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	if other.Watch != nil {
		out.Watch = other.Watch
	}
	if other.LaunchAtLogin != nil {
		out.LaunchAtLogin = other.LaunchAtLogin
	}
	if other.Display != nil {
		out.Display = other.Display
	}
	if other.XAuthority != nil {
		out.XAuthority = other.XAuthority
	}
	if other.Bindings != nil {
		merged := make(map[string]string, len(r.Bindings)+len(other.Bindings))
		for k, v := range r.Bindings {
			merged[k] = v
		}
		for k, v := range other.Bindings {
			merged[k] = v
		}
		out.Bindings = merged
	}
	out.Include = nil
	return out
}
