//go:build !linux && !windows

package hotkeys

import "github.com/1broseidon/snapwindow/internal/platform"

// NewRegistrar reports that global hotkeys are unavailable here. Snaps are
// still reachable over IPC, so an external hotkey tool can drive them.
func NewRegistrar(platform.Backend) (Registrar, error) {
	return nil, ErrUnsupported
}
