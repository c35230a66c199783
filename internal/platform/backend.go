package platform

import (
	"fmt"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

// WindowHandle is an opaque, platform-specific window reference. It is only
// meaningful for the duration of one snap operation.
type WindowHandle uintptr

// Display describes a physical display and its usable work area.
type Display struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Bounds      geometry.Rect `json:"bounds"`
	WorkArea    geometry.Rect `json:"work_area"`
	ScaleFactor float64       `json:"scale_factor"`
	Primary     bool          `json:"primary"`
}

// LogicalBounds returns Bounds divided by the display scale factor.
func (d Display) LogicalBounds() geometry.Rect {
	if d.ScaleFactor <= 0 {
		return d.Bounds
	}
	return d.Bounds.ScaledBy(1 / d.ScaleFactor)
}

// Window is a snapshot of a top-level window.
type Window struct {
	Handle    WindowHandle  `json:"-"`
	Title     string        `json:"title"`
	Frame     geometry.Rect `json:"frame"`
	DisplayID int           `json:"display_id"`
}

// PermissionState reports whether the process may inspect and move other
// applications' windows.
type PermissionState int

const (
	PermissionUnknown PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (p PermissionState) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	case PermissionUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("PermissionState(%d)", int(p))
	}
}

// Backend abstracts window-system operations. Exactly one implementation is
// compiled into a binary, selected by build tags.
//
// Every returned Window and Display is a snapshot; callers re-resolve them
// on each operation.
type Backend interface {
	FocusedWindow() (Window, error)
	SetWindowFrame(w Window, frame geometry.Rect) error
	CurrentDisplay(w Window) (Display, error)
	Displays() ([]Display, error)
	CheckPermission() PermissionState
	RequestPermission() error
}

// Native is a Backend that holds an OS connection which must be released.
type Native interface {
	Backend
	Close() error
}
