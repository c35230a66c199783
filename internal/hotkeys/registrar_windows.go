//go:build windows

package hotkeys

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/snapwindow/internal/platform"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
)

const (
	modAlt      = 0x0001
	modControl  = 0x0002
	modShift    = 0x0004
	modWin      = 0x0008
	modNoRepeat = 0x4000

	wmQuit   = 0x0012
	wmHotkey = 0x0312
	wmApp    = 0x8000

	pmNoRemove = 0x0000
)

var virtualKeys = map[string]uintptr{
	"Left":      0x25,
	"Up":        0x26,
	"Right":     0x27,
	"Down":      0x28,
	"Enter":     0x0D,
	"Space":     0x20,
	"Escape":    0x1B,
	"Tab":       0x09,
	"Home":      0x24,
	"End":       0x23,
	"PageUp":    0x21,
	"PageDown":  0x22,
	"Backspace": 0x08,
	"Delete":    0x2E,
	"Insert":    0x2D,
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

type call struct {
	fn   func() error
	done chan error
}

// win32Registrar owns a locked OS thread running a message loop. Hotkeys
// registered with a nil window post WM_HOTKEY to the registering thread, so
// every RegisterHotKey and UnregisterHotKey call is marshalled onto it.
type win32Registrar struct {
	threadID uint32
	calls    chan call

	mu        sync.Mutex
	callbacks map[uintptr]func()
	nextID    uintptr

	exited chan struct{}
}

// NewRegistrar starts the hotkey message loop.
func NewRegistrar(platform.Backend) (Registrar, error) {
	r := &win32Registrar{
		calls:     make(chan call),
		callbacks: make(map[uintptr]func()),
		nextID:    1,
		exited:    make(chan struct{}),
	}
	ready := make(chan uint32)
	go r.loop(ready)
	r.threadID = <-ready
	return r, nil
}

func (r *win32Registrar) loop(ready chan<- uint32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.exited)

	// Force creation of the thread message queue before anyone posts to it.
	var m msg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)
	ready <- windows.GetCurrentThreadId()

	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			return
		}
		switch m.message {
		case wmHotkey:
			r.mu.Lock()
			cb := r.callbacks[m.wParam]
			r.mu.Unlock()
			if cb != nil {
				go cb()
			}
		case wmApp:
			c := <-r.calls
			c.done <- c.fn()
		}
	}
}

// run executes fn on the message loop thread.
func (r *win32Registrar) run(fn func() error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	if ret, _, err := procPostThreadMessageW.Call(uintptr(r.threadID), wmApp, 0, 0); ret == 0 {
		return fmt.Errorf("PostThreadMessageW: %w", err)
	}
	select {
	case r.calls <- c:
		return <-c.done
	case <-r.exited:
		return fmt.Errorf("hotkey thread has exited")
	}
}

func (r *win32Registrar) Register(chord Chord, callback func()) error {
	vk, err := virtualKey(chord.Key)
	if err != nil {
		return err
	}
	mods := uintptr(modNoRepeat)
	if chord.Alt {
		mods |= modAlt
	}
	if chord.Ctrl {
		mods |= modControl
	}
	if chord.Shift {
		mods |= modShift
	}
	if chord.Super {
		mods |= modWin
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	err = r.run(func() error {
		if ret, _, callErr := procRegisterHotKey.Call(0, id, mods, vk); ret == 0 {
			return fmt.Errorf("RegisterHotKey %s: %w", chord, callErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.callbacks[id] = callback
	r.mu.Unlock()
	return nil
}

func (r *win32Registrar) UnregisterAll() error {
	r.mu.Lock()
	ids := make([]uintptr, 0, len(r.callbacks))
	for id := range r.callbacks {
		ids = append(ids, id)
	}
	r.callbacks = make(map[uintptr]func())
	r.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	return r.run(func() error {
		for _, id := range ids {
			procUnregisterHotKey.Call(0, id)
		}
		return nil
	})
}

func (r *win32Registrar) Close() error {
	procPostThreadMessageW.Call(uintptr(r.threadID), wmQuit, 0, 0)
	<-r.exited
	return nil
}

func virtualKey(key string) (uintptr, error) {
	if vk, ok := virtualKeys[key]; ok {
		return vk, nil
	}
	if len(key) == 1 {
		ch := key[0]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return uintptr(ch), nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(key, "F%d", &n); err == nil && n >= 1 && n <= 24 {
		return uintptr(0x70 + n - 1), nil
	}
	return 0, fmt.Errorf("no virtual key for %q", key)
}
