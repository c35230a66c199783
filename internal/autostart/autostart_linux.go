//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// New returns the XDG autostart entry for exe.
func New(exe string) (Manager, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return desktopEntry(filepath.Join(dir, "autostart"), exe), nil
}
