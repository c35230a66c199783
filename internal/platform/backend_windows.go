//go:build windows

package platform

import (
	"errors"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	shcore = windows.NewLazySystemDLL("shcore.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	procGetForegroundWindow           = user32.NewProc("GetForegroundWindow")
	procGetShellWindow                = user32.NewProc("GetShellWindow")
	procGetDesktopWindow              = user32.NewProc("GetDesktopWindow")
	procIsWindow                      = user32.NewProc("IsWindow")
	procIsZoomed                      = user32.NewProc("IsZoomed")
	procIsIconic                      = user32.NewProc("IsIconic")
	procShowWindow                    = user32.NewProc("ShowWindow")
	procGetWindowRect                 = user32.NewProc("GetWindowRect")
	procSetWindowPos                  = user32.NewProc("SetWindowPos")
	procGetWindowTextW                = user32.NewProc("GetWindowTextW")
	procEnumDisplayMonitors           = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW               = user32.NewProc("GetMonitorInfoW")
	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	procGetDpiForMonitor              = shcore.NewProc("GetDpiForMonitor")
	procDwmGetWindowAttribute         = dwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	swRestore = 9

	swpNoZOrder     = 0x0004
	swpNoActivate   = 0x0010
	swpFrameChanged = 0x0020

	monitorInfoFPrimary = 0x1
	mdtEffectiveDPI     = 0
	dwmwaExtendedFrame  = 9

	errorAccessDenied        = windows.Errno(5)
	errorInvalidWindowHandle = windows.Errno(1400)

	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2
	dpiAwarenessPerMonitorV2 = ^uintptr(3)
)

type monitorInfoEx struct {
	cbSize    uint32
	rcMonitor windows.Rect
	rcWork    windows.Rect
	dwFlags   uint32
	szDevice  [32]uint16
}

// WindowsBackend drives top-level windows through user32. Coordinates are
// physical pixels; the process opts into per-monitor DPI awareness so every
// monitor reports unscaled geometry.
type WindowsBackend struct{}

var _ Native = (*WindowsBackend)(nil)

var dpiOnce sync.Once

// NewWindowsBackend returns the Win32 backend.
func NewWindowsBackend() *WindowsBackend {
	dpiOnce.Do(func() {
		if procSetProcessDpiAwarenessContext.Find() == nil {
			procSetProcessDpiAwarenessContext.Call(dpiAwarenessPerMonitorV2)
		}
	})
	return &WindowsBackend{}
}

// Open returns the backend for this platform.
func Open() (Native, error) {
	return NewWindowsBackend(), nil
}

func (b *WindowsBackend) Close() error { return nil }

// FocusedWindow returns the foreground window.
func (b *WindowsBackend) FocusedWindow() (Window, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return Window{}, ErrNoFocusedWindow
	}
	shell, _, _ := procGetShellWindow.Call()
	desktop, _, _ := procGetDesktopWindow.Call()
	if hwnd == shell || hwnd == desktop {
		return Window{}, ErrNoFocusedWindow
	}

	displays, space, err := b.displaysAndSpace()
	if err != nil {
		return Window{}, err
	}

	frame, err := visibleFrame(hwnd)
	if err != nil {
		return Window{}, err
	}
	frame = space.ToVirtual(frame)

	w := Window{
		Handle: WindowHandle(hwnd),
		Title:  windowText(hwnd),
		Frame:  frame,
	}
	if d, err := DisplayForFrame(displays, frame); err == nil {
		w.DisplayID = d.ID
	}
	return w, nil
}

// SetWindowFrame restores a maximized window and moves it with one
// SetWindowPos call, compensating for invisible resize borders.
func (b *WindowsBackend) SetWindowFrame(w Window, frame geometry.Rect) error {
	hwnd := uintptr(w.Handle)
	if ok, _, _ := procIsWindow.Call(hwnd); ok == 0 {
		return ErrWindowNotFound
	}

	_, space, err := b.displaysAndSpace()
	if err != nil {
		return err
	}
	target := space.ToNative(frame)

	zoomed, _, _ := procIsZoomed.Call(hwnd)
	iconic, _, _ := procIsIconic.Call(hwnd)
	if zoomed != 0 || iconic != 0 {
		procShowWindow.Call(hwnd, swRestore)
	}

	left, top, right, bottom := invisibleBorders(hwnd)
	x := target.X - left
	y := target.Y - top
	width := target.Width + left + right
	height := target.Height + top + bottom

	ret, _, callErr := procSetWindowPos.Call(
		hwnd,
		0,
		uintptr(int32(x)),
		uintptr(int32(y)),
		uintptr(int32(width)),
		uintptr(int32(height)),
		swpNoZOrder|swpNoActivate|swpFrameChanged,
	)
	if ret == 0 {
		return win32Error("SetWindowPos", callErr)
	}
	return nil
}

// CurrentDisplay returns the monitor sharing the most area with the window.
func (b *WindowsBackend) CurrentDisplay(w Window) (Display, error) {
	displays, err := b.Displays()
	if err != nil {
		return Display{}, err
	}
	return DisplayForFrame(displays, w.Frame)
}

// Displays enumerates monitors in EnumDisplayMonitors order.
func (b *WindowsBackend) Displays() ([]Display, error) {
	displays, _, err := b.displaysAndSpace()
	return displays, err
}

// CheckPermission reports granted; Windows has no accessibility consent.
// Elevated target windows are reported per call as PermissionDenied.
func (b *WindowsBackend) CheckPermission() PermissionState {
	return PermissionGranted
}

func (b *WindowsBackend) RequestPermission() error { return nil }

func (b *WindowsBackend) displaysAndSpace() ([]Display, CoordSpace, error) {
	monitors, err := enumMonitors()
	if err != nil {
		return nil, CoordSpace{}, err
	}

	displays := make([]Display, 0, len(monitors))
	for i, hmon := range monitors {
		var info monitorInfoEx
		info.cbSize = uint32(unsafe.Sizeof(info))
		if ret, _, callErr := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&info))); ret == 0 {
			return nil, CoordSpace{}, win32Error("GetMonitorInfoW", callErr)
		}
		displays = append(displays, Display{
			ID:          i,
			Name:        windows.UTF16ToString(info.szDevice[:]),
			Bounds:      fromWinRect(info.rcMonitor),
			WorkArea:    fromWinRect(info.rcWork),
			ScaleFactor: monitorScale(hmon),
			Primary:     info.dwFlags&monitorInfoFPrimary != 0,
		})
	}
	if len(displays) == 0 {
		return nil, CoordSpace{}, ErrNoDisplaysFound
	}

	out, space := NormalizeDisplays(displays)
	return out, space, nil
}

var (
	enumMu       sync.Mutex
	enumHandles  []uintptr
	enumCallback = windows.NewCallback(func(hmon, hdc, rect, data uintptr) uintptr {
		enumHandles = append(enumHandles, hmon)
		return 1
	})
)

func enumMonitors() ([]uintptr, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = enumHandles[:0]
	ret, _, callErr := procEnumDisplayMonitors.Call(0, 0, enumCallback, 0)
	if ret == 0 {
		return nil, win32Error("EnumDisplayMonitors", callErr)
	}
	out := make([]uintptr, len(enumHandles))
	copy(out, enumHandles)
	return out, nil
}

func monitorScale(hmon uintptr) float64 {
	if procGetDpiForMonitor.Find() != nil {
		return 1
	}
	var dpiX, dpiY uint32
	hr, _, _ := procGetDpiForMonitor.Call(hmon, mdtEffectiveDPI, uintptr(unsafe.Pointer(&dpiX)), uintptr(unsafe.Pointer(&dpiY)))
	if hr != 0 || dpiX == 0 {
		return 1
	}
	return float64(dpiX) / 96
}

// visibleFrame returns the window rect without the invisible resize border
// that Windows 10 and later add around top-level windows.
func visibleFrame(hwnd uintptr) (geometry.Rect, error) {
	if r, ok := extendedFrameBounds(hwnd); ok {
		return fromWinRect(r), nil
	}
	var r windows.Rect
	if ret, _, callErr := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r))); ret == 0 {
		return geometry.Rect{}, win32Error("GetWindowRect", callErr)
	}
	return fromWinRect(r), nil
}

func extendedFrameBounds(hwnd uintptr) (windows.Rect, bool) {
	var r windows.Rect
	if procDwmGetWindowAttribute.Find() != nil {
		return r, false
	}
	hr, _, _ := procDwmGetWindowAttribute.Call(hwnd, dwmwaExtendedFrame, uintptr(unsafe.Pointer(&r)), unsafe.Sizeof(r))
	return r, hr == 0
}

func invisibleBorders(hwnd uintptr) (left, top, right, bottom int) {
	var outer windows.Rect
	if ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&outer))); ret == 0 {
		return 0, 0, 0, 0
	}
	visible, ok := extendedFrameBounds(hwnd)
	if !ok {
		return 0, 0, 0, 0
	}
	return int(visible.Left - outer.Left),
		int(visible.Top - outer.Top),
		int(outer.Right - visible.Right),
		int(outer.Bottom - visible.Bottom)
}

func windowText(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func fromWinRect(r windows.Rect) geometry.Rect {
	return geometry.Rect{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}
}

func win32Error(op string, err error) error {
	var errno windows.Errno
	if errors.As(err, &errno) {
		switch errno {
		case errorAccessDenied:
			return ErrPermissionDenied
		case errorInvalidWindowHandle:
			return ErrWindowNotFound
		}
		return &NativeError{Op: op, Code: int64(errno), Err: errno}
	}
	return NativeFailure(op, err)
}
