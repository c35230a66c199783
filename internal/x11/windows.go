package x11

import (
	"errors"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

// FrameExtents are the decoration sizes a window manager draws around a client.
type FrameExtents struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Outer grows a client rect to include the decorations.
func (e FrameExtents) Outer(client geometry.Rect) geometry.Rect {
	return geometry.Rect{
		X:      client.X - e.Left,
		Y:      client.Y - e.Top,
		Width:  client.Width + e.Left + e.Right,
		Height: client.Height + e.Top + e.Bottom,
	}
}

// ClientSize returns the client size that makes the outer frame fill outer.
func (e FrameExtents) ClientSize(outer geometry.Rect) (int, int) {
	w := outer.Width - e.Left - e.Right
	h := outer.Height - e.Top - e.Bottom
	return max(w, 1), max(h, 1)
}

// IsBadWindow reports whether err is an X protocol error for a destroyed window.
func IsBadWindow(err error) bool {
	var we xproto.WindowError
	var de xproto.DrawableError
	return errors.As(err, &we) || errors.As(err, &de)
}

// MoveResizeWindow moves and resizes a window so its outer frame, decorations
// included, covers outer.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, outer geometry.Rect) error {
	// A maximized window ignores geometry requests in most window managers.
	_ = c.unmaximizeWindow(windowID)

	extents := c.GetFrameExtents(windowID)
	width, height := extents.ClientSize(outer)

	// Use EWMH MoveResize for better WM compatibility; with the default
	// gravity x/y place the frame while width/height size the client.
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, outer.X, outer.Y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(outer.X, outer.Y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetFrameExtents returns the window decoration sizes, or zeros when the
// window manager does not publish _NET_FRAME_EXTENTS.
func (c *Connection) GetFrameExtents(windowID xproto.Window) FrameExtents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return FrameExtents{}
	}
	return FrameExtents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// WindowFrame returns the outer frame of a client window in root coordinates.
func (c *Connection) WindowFrame(windowID xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}

	client := geometry.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}
	return c.GetFrameExtents(windowID).Outer(client), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW, which is 0 when nothing has focus.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// WindowTitle returns the EWMH title, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return title
	}
	return ""
}
