package platform

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied = errors.New("permission to control windows denied")
	ErrNoFocusedWindow  = errors.New("no window has input focus")
	ErrWindowNotFound   = errors.New("window no longer exists")
	ErrNoDisplaysFound  = errors.New("no displays found")
	ErrNativeAPI        = errors.New("native window API failure")
)

// NativeError wraps an unexpected OS failure. It matches ErrNativeAPI under
// errors.Is.
type NativeError struct {
	Op   string
	Code int64
	Err  error
}

// NativeFailure builds a NativeError for op.
func NativeFailure(op string, err error) error {
	return &NativeError{Op: op, Err: err}
}

func (e *NativeError) Error() string {
	msg := ErrNativeAPI.Error() + ": " + e.Op
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NativeError) Unwrap() error { return e.Err }

func (e *NativeError) Is(target error) bool { return target == ErrNativeAPI }

// Kind is a stable code identifying a failure class on the IPC, MCP and CLI
// surfaces.
type Kind string

const (
	KindPermissionDenied Kind = "permission_denied"
	KindNoFocusedWindow  Kind = "no_focused_window"
	KindWindowNotFound   Kind = "window_not_found"
	KindNoDisplaysFound  Kind = "no_displays_found"
	KindNativeAPIFailure Kind = "native_api_failure"
)

// KindOf classifies err. Errors outside the taxonomy are reported as native
// API failures; a nil error has no kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrNoFocusedWindow):
		return KindNoFocusedWindow
	case errors.Is(err, ErrWindowNotFound):
		return KindWindowNotFound
	case errors.Is(err, ErrNoDisplaysFound):
		return KindNoDisplaysFound
	default:
		return KindNativeAPIFailure
	}
}
