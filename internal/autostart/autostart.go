// Package autostart starts the daemon when the user logs in.
package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const AppName = "snapwindow"

// ErrUnsupported is returned by New on platforms without a login item
// mechanism.
var ErrUnsupported = errors.New("launch at login is not supported on this platform")

// Manager toggles the login item for this program.
type Manager interface {
	// IsEnabled reports whether the login item exists.
	IsEnabled() bool
	Enable() error
	Disable() error
}

// Sync makes the login item match want. It reports whether anything changed.
func Sync(m Manager, want bool) (bool, error) {
	if m.IsEnabled() == want {
		return false, nil
	}
	if want {
		return true, m.Enable()
	}
	return true, m.Disable()
}

// fileEntry is a login item backed by a single file, as used by XDG
// autostart and launchd.
type fileEntry struct {
	path    string
	content []byte
}

func (f *fileEntry) IsEnabled() bool {
	data, err := os.ReadFile(f.path)
	return err == nil && bytes.Equal(data, f.content)
}

func (f *fileEntry) Enable() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(f.path), err)
	}
	if err := os.WriteFile(f.path, f.content, 0644); err != nil {
		return fmt.Errorf("failed to write login item: %w", err)
	}
	return nil
}

func (f *fileEntry) Disable() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove login item: %w", err)
	}
	return nil
}

// desktopEntry returns an XDG autostart entry in dir that runs exe daemon.
func desktopEntry(dir, exe string) *fileEntry {
	content := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Snap windows to screen regions with global hotkeys
Exec=%s daemon
Terminal=false
X-GNOME-Autostart-enabled=true
`, AppName, quoteExec(exe))
	return &fileEntry{
		path:    filepath.Join(dir, AppName+".desktop"),
		content: []byte(content),
	}
}

// quoteExec quotes an Exec= argument using freedesktop Desktop Entry rules.
func quoteExec(arg string) string {
	needs := false
	for _, r := range arg {
		switch r {
		case ' ', '\t', '"', '\'', '\\', '>', '<', '~', '|', '&', ';', '$', '*', '?', '#', '(', ')', '`':
			needs = true
		}
	}
	if !needs {
		return arg
	}
	var b bytes.Buffer
	b.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '`', '$', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
