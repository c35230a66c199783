//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreGraphics -framework AppKit -framework Foundation
#include <stdint.h>
#include <ApplicationServices/ApplicationServices.h>
#import <AppKit/AppKit.h>

enum { swOK = 0, swNoFocus = 1, swDenied = 2, swInvalid = 3, swFailure = 4 };

typedef struct {
	uint32_t id;
	double x, y, w, h;
	double wx, wy, ww, wh;
	double scale;
	int primary;
} sw_display;

static int sw_status(AXError err) {
	switch (err) {
	case kAXErrorSuccess:
		return swOK;
	case kAXErrorAPIDisabled:
		return swDenied;
	case kAXErrorInvalidUIElement:
		return swInvalid;
	case kAXErrorNoValue:
	case kAXErrorAttributeUnsupported:
		return swNoFocus;
	default:
		return swFailure;
	}
}

static int sw_is_trusted(int prompt) {
	if (!prompt) {
		return AXIsProcessTrusted() ? 1 : 0;
	}
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanTrue };
	CFDictionaryRef opts = CFDictionaryCreate(NULL, keys, values, 1,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(opts);
	CFRelease(opts);
	return trusted ? 1 : 0;
}

static int sw_focused_window(uintptr_t *out, int *code) {
	*out = 0;
	AXUIElementRef system = AXUIElementCreateSystemWide();
	CFTypeRef app = NULL;
	AXError err = AXUIElementCopyAttributeValue(system, kAXFocusedApplicationAttribute, &app);
	CFRelease(system);
	*code = err;
	if (err != kAXErrorSuccess) {
		return sw_status(err);
	}
	if (app == NULL) {
		return swNoFocus;
	}

	CFTypeRef win = NULL;
	err = AXUIElementCopyAttributeValue((AXUIElementRef)app, kAXFocusedWindowAttribute, &win);
	CFRelease(app);
	*code = err;
	if (err != kAXErrorSuccess) {
		return sw_status(err);
	}
	if (win == NULL) {
		return swNoFocus;
	}
	*out = (uintptr_t)win;
	return swOK;
}

static void sw_release(uintptr_t handle) {
	if (handle != 0) {
		CFRelease((CFTypeRef)handle);
	}
}

static int sw_window_frame(uintptr_t handle, double *x, double *y, double *w, double *h, int *code) {
	AXUIElementRef win = (AXUIElementRef)handle;
	CFTypeRef pos = NULL;
	CFTypeRef size = NULL;
	AXError err = AXUIElementCopyAttributeValue(win, kAXPositionAttribute, &pos);
	*code = err;
	if (err != kAXErrorSuccess) {
		return sw_status(err);
	}
	err = AXUIElementCopyAttributeValue(win, kAXSizeAttribute, &size);
	*code = err;
	if (err != kAXErrorSuccess) {
		CFRelease(pos);
		return sw_status(err);
	}
	CGPoint p;
	CGSize s;
	AXValueGetValue((AXValueRef)pos, kAXValueCGPointType, &p);
	AXValueGetValue((AXValueRef)size, kAXValueCGSizeType, &s);
	CFRelease(pos);
	CFRelease(size);
	*x = p.x;
	*y = p.y;
	*w = s.width;
	*h = s.height;
	return swOK;
}

static int sw_window_title(uintptr_t handle, char *buf, int len) {
	CFTypeRef title = NULL;
	if (AXUIElementCopyAttributeValue((AXUIElementRef)handle, kAXTitleAttribute, &title) != kAXErrorSuccess || title == NULL) {
		return 0;
	}
	Boolean ok = CFStringGetCString((CFStringRef)title, buf, len, kCFStringEncodingUTF8);
	CFRelease(title);
	return ok ? 1 : 0;
}

// Size is applied before and after the move so a window travelling to a
// smaller display is not clamped by its old position.
static int sw_set_frame(uintptr_t handle, double x, double y, double w, double h, int *code) {
	AXUIElementRef win = (AXUIElementRef)handle;
	CGPoint p = CGPointMake(x, y);
	CGSize s = CGSizeMake(w, h);
	AXValueRef pv = AXValueCreate(kAXValueCGPointType, &p);
	AXValueRef sv = AXValueCreate(kAXValueCGSizeType, &s);
	AXError err = AXUIElementSetAttributeValue(win, kAXSizeAttribute, sv);
	if (err == kAXErrorSuccess) {
		err = AXUIElementSetAttributeValue(win, kAXPositionAttribute, pv);
	}
	if (err == kAXErrorSuccess) {
		err = AXUIElementSetAttributeValue(win, kAXSizeAttribute, sv);
	}
	CFRelease(pv);
	CFRelease(sv);
	*code = err;
	return sw_status(err);
}

static int sw_displays(sw_display *out, int max) {
	CGDirectDisplayID ids[16];
	uint32_t count = 0;
	if (CGGetActiveDisplayList(16, ids, &count) != kCGErrorSuccess) {
		return -1;
	}
	CGRect mainBounds = CGDisplayBounds(CGMainDisplayID());
	int n = 0;
	@autoreleasepool {
		NSArray<NSScreen *> *screens = [NSScreen screens];
		for (uint32_t i = 0; i < count && n < max; i++) {
			CGRect b = CGDisplayBounds(ids[i]);
			sw_display d;
			d.id = ids[i];
			d.x = b.origin.x;
			d.y = b.origin.y;
			d.w = b.size.width;
			d.h = b.size.height;
			d.wx = d.x;
			d.wy = d.y;
			d.ww = d.w;
			d.wh = d.h;
			d.scale = 1;
			d.primary = CGDisplayIsMain(ids[i]) ? 1 : 0;
			for (NSScreen *screen in screens) {
				NSNumber *num = screen.deviceDescription[@"NSScreenNumber"];
				if (num == nil || num.unsignedIntValue != ids[i]) {
					continue;
				}
				// Cocoa frames grow upward from the bottom-left of the main display.
				NSRect vf = screen.visibleFrame;
				d.wx = vf.origin.x;
				d.wy = mainBounds.size.height - (vf.origin.y + vf.size.height);
				d.ww = vf.size.width;
				d.wh = vf.size.height;
				d.scale = screen.backingScaleFactor;
				break;
			}
			out[n++] = d;
		}
	}
	return n;
}
*/
import "C"

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/1broseidon/snapwindow/internal/geometry"
)

const maxDisplays = 16

// DarwinBackend drives windows through the macOS Accessibility API. It keeps
// the most recently resolved AXUIElement retained until the next lookup.
type DarwinBackend struct {
	mu   sync.Mutex
	last C.uintptr_t
}

var _ Native = (*DarwinBackend)(nil)

// NewDarwinBackend returns the Accessibility-based backend.
func NewDarwinBackend() *DarwinBackend {
	return &DarwinBackend{}
}

// Open returns the backend for this platform.
func Open() (Native, error) {
	return NewDarwinBackend(), nil
}

// Close releases the retained window reference.
func (b *DarwinBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	C.sw_release(b.last)
	b.last = 0
	return nil
}

func (b *DarwinBackend) FocusedWindow() (Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	C.sw_release(b.last)
	b.last = 0

	var handle C.uintptr_t
	var code C.int
	if err := axError("focused window", C.sw_focused_window(&handle, &code), code); err != nil {
		return Window{}, err
	}
	b.last = handle

	var x, y, w, h C.double
	if err := axError("window frame", C.sw_window_frame(handle, &x, &y, &w, &h, &code), code); err != nil {
		return Window{}, err
	}

	displays, space, err := darwinDisplays()
	if err != nil {
		return Window{}, err
	}

	frame := space.ToVirtual(roundRect(float64(x), float64(y), float64(w), float64(h)))
	win := Window{
		Handle: WindowHandle(handle),
		Title:  windowTitle(handle),
		Frame:  frame,
	}
	if d, err := DisplayForFrame(displays, frame); err == nil {
		win.DisplayID = d.ID
	}
	return win, nil
}

func (b *DarwinBackend) SetWindowFrame(w Window, frame geometry.Rect) error {
	_, space, err := darwinDisplays()
	if err != nil {
		return err
	}
	target := space.ToNative(frame)

	var code C.int
	status := C.sw_set_frame(
		C.uintptr_t(w.Handle),
		C.double(target.X),
		C.double(target.Y),
		C.double(target.Width),
		C.double(target.Height),
		&code,
	)
	if status == C.swNoFocus {
		return NativeFailure("set window frame", fmt.Errorf("window does not support resizing"))
	}
	return axError("set window frame", status, code)
}

func (b *DarwinBackend) CurrentDisplay(w Window) (Display, error) {
	displays, err := b.Displays()
	if err != nil {
		return Display{}, err
	}
	return DisplayForFrame(displays, w.Frame)
}

func (b *DarwinBackend) Displays() ([]Display, error) {
	displays, _, err := darwinDisplays()
	return displays, err
}

// CheckPermission reports whether the process is a trusted accessibility client.
func (b *DarwinBackend) CheckPermission() PermissionState {
	if C.sw_is_trusted(0) != 0 {
		return PermissionGranted
	}
	return PermissionDenied
}

// RequestPermission shows the system accessibility prompt if the process is
// not yet trusted. It returns without waiting for the user.
func (b *DarwinBackend) RequestPermission() error {
	C.sw_is_trusted(1)
	return nil
}

func darwinDisplays() ([]Display, CoordSpace, error) {
	var raw [maxDisplays]C.sw_display
	n := int(C.sw_displays(&raw[0], C.int(maxDisplays)))
	if n < 0 {
		return nil, CoordSpace{}, NativeFailure("CGGetActiveDisplayList", nil)
	}
	if n == 0 {
		return nil, CoordSpace{}, ErrNoDisplaysFound
	}

	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		d := raw[i]
		displays = append(displays, Display{
			ID:          int(d.id),
			Name:        fmt.Sprintf("display-%d", uint32(d.id)),
			Bounds:      roundRect(float64(d.x), float64(d.y), float64(d.w), float64(d.h)),
			WorkArea:    roundRect(float64(d.wx), float64(d.wy), float64(d.ww), float64(d.wh)),
			ScaleFactor: float64(d.scale),
			Primary:     d.primary != 0,
		})
	}
	out, space := NormalizeDisplays(displays)
	return out, space, nil
}

func windowTitle(handle C.uintptr_t) string {
	buf := make([]byte, 512)
	if C.sw_window_title(handle, (*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf))) == 0 {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}

func axError(op string, status, code C.int) error {
	switch status {
	case C.swOK:
		return nil
	case C.swNoFocus:
		return ErrNoFocusedWindow
	case C.swDenied:
		return ErrPermissionDenied
	case C.swInvalid:
		return ErrWindowNotFound
	default:
		return &NativeError{Op: op, Code: int64(code), Err: fmt.Errorf("AXError %d", int(code))}
	}
}

// Points can be fractional on scaled displays.
func roundRect(x, y, w, h float64) geometry.Rect {
	x1 := int(math.Round(x))
	y1 := int(math.Round(y))
	return geometry.Rect{
		X:      x1,
		Y:      y1,
		Width:  int(math.Round(x+w)) - x1,
		Height: int(math.Round(y+h)) - y1,
	}
}
