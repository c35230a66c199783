package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

// Monitor represents a physical display
type Monitor struct {
	ID       int
	Name     string
	Bounds   geometry.Rect
	WorkArea geometry.Rect
	WidthMM  int
	Primary  bool
}

// ScaleFactor estimates the UI scale from the output's physical width,
// rounded to the nearest quarter and never below 1.
func (m Monitor) ScaleFactor() float64 {
	return scaleFactor(m.Bounds.Width, m.WidthMM)
}

// GetMonitors retrieves all active monitors using XRandR. Work areas exclude
// dock struts, falling back to _NET_WORKAREA when no dock reserves space.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		mon := Monitor{
			ID:   i,
			Name: fmt.Sprintf("Monitor%d", i),
			Bounds: geometry.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		}
		for _, output := range crtcInfo.Outputs {
			if primary != 0 && output == primary {
				mon.Primary = true
			}
		}

		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			mon.Name = string(outputInfo.Name)
			// Rotated outputs report physical size unrotated.
			if crtcInfo.Rotation&(randr.RotationRotate90|randr.RotationRotate270) != 0 {
				mon.WidthMM = int(outputInfo.MmHeight)
			} else {
				mon.WidthMM = int(outputInfo.MmWidth)
			}
		}

		monitors = append(monitors, mon)
	}

	if len(monitors) == 0 {
		return nil, nil
	}

	struts, rootWidth, rootHeight, err := c.dockStruts()
	if err != nil {
		struts = nil
	}
	var netWorkArea *geometry.Rect
	if wa, ok := c.currentWorkArea(); ok {
		netWorkArea = &wa
	}

	for i := range monitors {
		mon := &monitors[i]
		if work, ok := WorkAreaFromStruts(mon.Bounds, rootWidth, rootHeight, struts); ok {
			mon.WorkArea = work
			continue
		}
		mon.WorkArea = mon.Bounds
		if netWorkArea != nil {
			if isect := mon.Bounds.Intersection(*netWorkArea); !isect.Empty() {
				mon.WorkArea = isect
			}
		}
	}

	return monitors, nil
}

// currentWorkArea returns _NET_WORKAREA for the current desktop.
func (c *Connection) currentWorkArea() (geometry.Rect, bool) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return geometry.Rect{}, false
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	return geometry.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}

// dockStruts collects the strut reservations of every dock window.
func (c *Connection) dockStruts() ([]*ewmh.WmStrutPartial, int, int, error) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return nil, 0, 0, err
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, rootWidth, rootHeight, err
	}

	var struts []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			struts = append(struts, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			struts = append(struts, &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			})
		}
	}
	return struts, rootWidth, rootHeight, nil
}

type dockInsets struct {
	left   int
	right  int
	top    int
	bottom int
}

// WorkAreaFromStruts shrinks a monitor's bounds by the dock struts that
// overlap it. Strut coordinates are relative to the root window edges. The
// second result is false when no strut touches the monitor.
func WorkAreaFromStruts(monitor geometry.Rect, rootWidth, rootHeight int, struts []*ewmh.WmStrutPartial) (geometry.Rect, bool) {
	var acc dockInsets
	for _, sp := range struts {
		updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &acc)
	}
	if acc.left == 0 && acc.right == 0 && acc.top == 0 && acc.bottom == 0 {
		return monitor, false
	}

	work := geometry.Rect{
		X:      monitor.X + acc.left,
		Y:      monitor.Y + acc.top,
		Width:  monitor.Width - (acc.left + acc.right),
		Height: monitor.Height - (acc.top + acc.bottom),
	}
	if work.Width < 1 {
		work.Width = 1
	}
	if work.Height < 1 {
		work.Height = 1
	}
	return work, true
}

func updateStrutsForMonitor(monitor geometry.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockInsets) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strut := spanRect(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.top = max(acc.top, monitor.Intersection(strut).Height)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strut := spanRect(int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.bottom = max(acc.bottom, monitor.Intersection(strut).Height)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strut := spanRect(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.left = max(acc.left, monitor.Intersection(strut).Width)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strut := spanRect(rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.right = max(acc.right, monitor.Intersection(strut).Width)
	}
}

func spanRect(x1, y1, x2, y2 int) geometry.Rect {
	return geometry.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func scaleFactor(widthPx, widthMM int) float64 {
	// Projectors and some virtual outputs report nonsense sizes.
	if widthPx <= 0 || widthMM < 100 {
		return 1
	}
	dpi := float64(widthPx) * 25.4 / float64(widthMM)
	scale := math.Round(dpi/96*4) / 4
	if scale < 1 {
		return 1
	}
	return scale
}
