//go:build !linux && !windows && !darwin

package platform

import (
	"fmt"
	"runtime"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

var errUnsupported = fmt.Errorf("window control is not supported on %s", runtime.GOOS)

// UnsupportedBackend fails every operation.
type UnsupportedBackend struct{}

var _ Native = UnsupportedBackend{}

// Open returns the backend for this platform.
func Open() (Native, error) {
	return UnsupportedBackend{}, nil
}

func (UnsupportedBackend) Close() error { return nil }

func (UnsupportedBackend) FocusedWindow() (Window, error) {
	return Window{}, NativeFailure("focused window", errUnsupported)
}

func (UnsupportedBackend) SetWindowFrame(Window, geometry.Rect) error {
	return NativeFailure("set window frame", errUnsupported)
}

func (UnsupportedBackend) CurrentDisplay(Window) (Display, error) {
	return Display{}, NativeFailure("current display", errUnsupported)
}

func (UnsupportedBackend) Displays() ([]Display, error) {
	return nil, NativeFailure("enumerate displays", errUnsupported)
}

func (UnsupportedBackend) CheckPermission() PermissionState { return PermissionUnknown }

func (UnsupportedBackend) RequestPermission() error {
	return NativeFailure("request permission", errUnsupported)
}
