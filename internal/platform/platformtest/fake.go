// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"sync"

	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/platform"
)

// FrameCall records one SetWindowFrame invocation.
type FrameCall struct {
	Window platform.Window
	Frame  geometry.Rect
}

// Fake is a scriptable Backend. Zero values mean "no focused window, no
// displays, permission unknown".
type Fake struct {
	mu sync.Mutex

	Window      *platform.Window
	DisplayList []platform.Display
	Permission  platform.PermissionState

	FocusErr    error
	FrameErr    error
	DisplaysErr error
	RequestErr  error

	FrameCalls         []FrameCall
	FocusCalls         int
	DisplayCalls       int
	PermissionChecks   int
	PermissionRequests int
}

var _ platform.Backend = (*Fake)(nil)

// NewFake returns a Fake with the given displays and permission granted.
func NewFake(displays ...platform.Display) *Fake {
	return &Fake{
		DisplayList: displays,
		Permission:  platform.PermissionGranted,
	}
}

// Focus sets the focused window.
func (f *Fake) Focus(w platform.Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Window = &w
}

func (f *Fake) FocusedWindow() (platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FocusCalls++
	if f.FocusErr != nil {
		return platform.Window{}, f.FocusErr
	}
	if f.Window == nil {
		return platform.Window{}, platform.ErrNoFocusedWindow
	}
	return *f.Window, nil
}

func (f *Fake) SetWindowFrame(w platform.Window, frame geometry.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FrameCalls = append(f.FrameCalls, FrameCall{Window: w, Frame: frame})
	if f.FrameErr != nil {
		return f.FrameErr
	}
	if f.Window != nil && f.Window.Handle == w.Handle {
		f.Window.Frame = frame
	}
	return nil
}

func (f *Fake) CurrentDisplay(w platform.Window) (platform.Display, error) {
	displays, err := f.Displays()
	if err != nil {
		return platform.Display{}, err
	}
	return platform.DisplayForFrame(displays, w.Frame)
}

func (f *Fake) Displays() ([]platform.Display, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DisplayCalls++
	if f.DisplaysErr != nil {
		return nil, f.DisplaysErr
	}
	if len(f.DisplayList) == 0 {
		return nil, platform.ErrNoDisplaysFound
	}
	out := make([]platform.Display, len(f.DisplayList))
	copy(out, f.DisplayList)
	return out, nil
}

func (f *Fake) CheckPermission() platform.PermissionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PermissionChecks++
	return f.Permission
}

func (f *Fake) RequestPermission() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PermissionRequests++
	return f.RequestErr
}

// Frames returns a copy of the recorded SetWindowFrame calls.
func (f *Fake) Frames() []FrameCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FrameCall, len(f.FrameCalls))
	copy(out, f.FrameCalls)
	return out
}
