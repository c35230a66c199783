//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
// X11 needs no accessibility consent, so permission is always granted.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Native = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, NativeFailure("connect to X11", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Open returns the backend for this platform.
func Open() (Native, error) {
	b, err := NewLinuxBackendFromDisplay()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Close disconnects from the X server.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// QuitEventLoop stops a running EventLoop.
func (b *LinuxBackend) QuitEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	displays, _, err := b.displaysAndSpace()
	return displays, err
}

func (b *LinuxBackend) displaysAndSpace() ([]Display, CoordSpace, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, CoordSpace{}, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, CoordSpace{}, NativeFailure("enumerate RandR monitors", err)
	}
	if len(monitors) == 0 {
		return nil, CoordSpace{}, ErrNoDisplaysFound
	}

	displays := make([]Display, 0, len(monitors))
	hasPrimary := false
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
		hasPrimary = hasPrimary || m.Primary
	}

	// Root coordinates only differ from virtual-screen coordinates when no
	// CRTC sits at the root origin.
	displays, space := NormalizeDisplays(displays)
	if !hasPrimary {
		displays[0].Primary = true
	}
	return displays, space, nil
}

// CurrentDisplay returns the display sharing the most area with the window.
func (b *LinuxBackend) CurrentDisplay(w Window) (Display, error) {
	displays, err := b.Displays()
	if err != nil {
		return Display{}, err
	}
	return DisplayForFrame(displays, w.Frame)
}

// FocusedWindow returns the window named by _NET_ACTIVE_WINDOW.
func (b *LinuxBackend) FocusedWindow() (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return Window{}, NativeFailure("read _NET_ACTIVE_WINDOW", err)
	}
	if wid == 0 || wid == conn.Root || !conn.IsNormalWindow(wid) {
		return Window{}, ErrNoFocusedWindow
	}

	frame, err := conn.WindowFrame(wid)
	if err != nil {
		if x11.IsBadWindow(err) {
			return Window{}, ErrWindowNotFound
		}
		return Window{}, NativeFailure("query window geometry", err)
	}

	displays, space, err := b.displaysAndSpace()
	if err != nil {
		return Window{}, err
	}
	frame = space.ToVirtual(frame)

	w := Window{
		Handle: WindowHandle(wid),
		Title:  conn.WindowTitle(wid),
		Frame:  frame,
	}
	if d, err := DisplayForFrame(displays, frame); err == nil {
		w.DisplayID = d.ID
	}
	return w, nil
}

// SetWindowFrame moves and resizes the window so its outer frame equals frame.
func (b *LinuxBackend) SetWindowFrame(w Window, frame geometry.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	wid := xproto.Window(w.Handle)
	// The window may have been destroyed since it was resolved.
	if _, err := xproto.GetGeometry(conn.XUtil.Conn(), xproto.Drawable(wid)).Reply(); err != nil {
		if x11.IsBadWindow(err) {
			return ErrWindowNotFound
		}
		return NativeFailure("query window geometry", err)
	}

	_, space, err := b.displaysAndSpace()
	if err != nil {
		return err
	}

	if err := conn.MoveResizeWindow(wid, space.ToNative(frame)); err != nil {
		if x11.IsBadWindow(err) {
			return ErrWindowNotFound
		}
		return NativeFailure("_NET_MOVERESIZE_WINDOW", err)
	}
	return nil
}

// CheckPermission always reports granted on X11.
func (b *LinuxBackend) CheckPermission() PermissionState {
	return PermissionGranted
}

// RequestPermission is a no-op on X11.
func (b *LinuxBackend) RequestPermission() error {
	return nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, NativeFailure("x11", fmt.Errorf("backend connection is nil"))
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:          m.ID,
		Name:        m.Name,
		Bounds:      m.Bounds,
		WorkArea:    m.WorkArea,
		ScaleFactor: m.ScaleFactor(),
		Primary:     m.Primary,
	}
}
