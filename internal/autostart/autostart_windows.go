//go:build windows

package autostart

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// runEntry is a value under the per-user Run key.
type runEntry struct {
	command string
}

// New returns the HKCU Run entry for exe.
func New(exe string) (Manager, error) {
	return &runEntry{command: `"` + exe + `" daemon`}, nil
}

func (r *runEntry) IsEnabled() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	v, _, err := k.GetStringValue(AppName)
	return err == nil && v == r.command
}

func (r *runEntry) Enable() error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()
	if err := k.SetStringValue(AppName, r.command); err != nil {
		return fmt.Errorf("failed to write Run value: %w", err)
	}
	return nil
}

func (r *runEntry) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil
		}
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()
	if err := k.DeleteValue(AppName); err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("failed to delete Run value: %w", err)
	}
	return nil
}
