package daemon

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/ipc"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/platform/platformtest"
)

type fakeRegistrar struct {
	mu         sync.Mutex
	registered map[string]func()
	closed     bool
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{registered: make(map[string]func())}
}

func (f *fakeRegistrar) Register(c hotkeys.Chord, cb func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered[c.String()] = cb
	return nil
}

func (f *fakeRegistrar) UnregisterAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = make(map[string]func())
	return nil
}

func (f *fakeRegistrar) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRegistrar) fire(t *testing.T, chord string) {
	t.Helper()
	f.mu.Lock()
	cb, ok := f.registered[chord]
	f.mu.Unlock()
	require.True(t, ok, "chord %s not registered", chord)
	cb()
}

func (f *fakeRegistrar) has(chord string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.registered[chord]
	return ok
}

type fakeAutostart struct {
	mu      sync.Mutex
	enabled bool
}

func (f *fakeAutostart) IsEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeAutostart) Enable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = true
	return nil
}

func (f *fakeAutostart) Disable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = false
	return nil
}

type fixture struct {
	daemon    *Daemon
	backend   *platformtest.Fake
	registrar *fakeRegistrar
	autostart *fakeAutostart
	client    *ipc.Client
	cfgPath   string
	level     *slog.LevelVar
}

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func newFixture(t *testing.T, cfgYAML string) *fixture {
	t.Helper()
	dir, err := os.MkdirTemp("", "swd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfgPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, cfgPath, cfgYAML)

	r := geometry.Rect{Width: 1920, Height: 1080}
	f := &fixture{
		backend:   platformtest.NewFake(platform.Display{ID: 0, Name: "primary", Bounds: r, WorkArea: r, ScaleFactor: 1, Primary: true}),
		registrar: newFakeRegistrar(),
		autostart: &fakeAutostart{},
		cfgPath:   cfgPath,
		level:     new(slog.LevelVar),
	}
	f.backend.Focus(platform.Window{Handle: 5, Title: "shell", Frame: geometry.Rect{X: 50, Y: 50, Width: 640, Height: 480}})

	socket := filepath.Join(dir, "d.sock")
	d, err := New(Options{
		ConfigPath:         cfgPath,
		SocketPath:         socket,
		Level:              f.level,
		Backend:            f.backend,
		Registrar:          f.registrar,
		Autostart:          f.autostart,
		PermissionInterval: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	f.daemon = d
	f.client = ipc.NewClientWithPath(socket)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return f
}

func TestDaemon_HotkeyFiresSnap(t *testing.T) {
	f := newFixture(t, "watch: false\nbindings:\n  center: Super+C\n")

	f.registrar.fire(t, "Super+C")

	frames := f.backend.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, geometry.Rect{X: 320, Y: 180, Width: 1280, Height: 720}, frames[0].Frame)
}

func TestDaemon_AppliesLevelAndAutostart(t *testing.T) {
	f := newFixture(t, "watch: false\nlog_level: debug\nlaunch_at_login: true\n")

	assert.Equal(t, slog.LevelDebug, f.level.Level())
	assert.True(t, f.autostart.IsEnabled())
	assert.True(t, f.daemon.HotkeysActive())
}

func TestDaemon_IPCSnapAndStatus(t *testing.T) {
	f := newFixture(t, "watch: false\n")

	data, err := f.client.Snap("left-third", false)
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{Width: 640, Height: 1080}, data.Target)
	assert.Equal(t, "shell", data.WindowTitle)

	status, err := f.client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Hotkeys)
	assert.Equal(t, 15, status.Bindings)
	assert.Equal(t, f.cfgPath, status.ConfigPath)
}

func TestDaemon_SetBindingPersistsAndRegrabs(t *testing.T) {
	f := newFixture(t, "watch: false\n")

	require.NoError(t, f.client.SetBinding("maximize", "Super+M"))
	assert.True(t, f.registrar.has("Super+M"))

	res, err := config.LoadFromPath(f.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "Super+M", res.Config.Bindings["maximize"])

	require.NoError(t, f.client.SetBinding("maximize", ""))
	assert.False(t, f.registrar.has("Super+M"))
	bindings, err := f.client.Bindings()
	require.NoError(t, err)
	assert.Len(t, bindings, 14)

	err = f.client.SetBinding("center", "Super+Nope")
	require.Error(t, err)
	assert.Len(t, f.daemon.Bindings(), 14)
}

func TestDaemon_ReloadRejectsInvalidConfig(t *testing.T) {
	f := newFixture(t, "watch: false\nbindings:\n  center: Super+C\n")

	writeConfig(t, f.cfgPath, "watch: false\nbindings:\n  center: Super+X\n")
	require.NoError(t, f.client.Reload())
	assert.True(t, f.registrar.has("Super+X"))
	assert.False(t, f.registrar.has("Super+C"))

	writeConfig(t, f.cfgPath, "watch: false\nbindings:\n  center: [oops\n")
	require.Error(t, f.client.Reload())
	assert.True(t, f.registrar.has("Super+X"))
}

func TestDaemon_WatchReplacesTable(t *testing.T) {
	f := newFixture(t, "bindings:\n  center: Super+C\n")

	// Let the watcher register the directory.
	time.Sleep(150 * time.Millisecond)
	writeConfig(t, f.cfgPath, "bindings:\n  center: Super+V\n")

	require.Eventually(t, func() bool {
		return f.registrar.has("Super+V") && !f.registrar.has("Super+C")
	}, 3*time.Second, 20*time.Millisecond)
}

func TestNew_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "bindings:\n  center: Ctrl+Alt+Nope\n")

	_, err := New(Options{ConfigPath: path, Backend: platformtest.NewFake(), Registrar: newFakeRegistrar(), Autostart: &fakeAutostart{}})
	require.Error(t, err)
	var verr *config.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPermissionMonitor_ReportsTransitions(t *testing.T) {
	state := platform.PermissionDenied
	var mu sync.Mutex
	check := func() platform.PermissionState {
		mu.Lock()
		defer mu.Unlock()
		return state
	}

	var logs bytes.Buffer
	var changes [][2]platform.PermissionState
	m := NewPermissionMonitor(time.Hour, check, func(prev, next platform.PermissionState) {
		changes = append(changes, [2]platform.PermissionState{prev, next})
	}, slog.New(slog.NewTextHandler(&logs, nil)))

	m.poll()
	assert.Empty(t, changes)

	mu.Lock()
	state = platform.PermissionGranted
	mu.Unlock()
	m.poll()
	m.poll()

	require.Len(t, changes, 1)
	assert.Equal(t, [2]platform.PermissionState{platform.PermissionDenied, platform.PermissionGranted}, changes[0])
	assert.Contains(t, logs.String(), "window control permission changed")
}

func TestPermissionMonitor_RecoversFromPanic(t *testing.T) {
	calls := 0
	m := NewPermissionMonitor(time.Hour, func() platform.PermissionState {
		calls++
		if calls > 1 {
			panic("native crash")
		}
		return platform.PermissionGranted
	}, nil, nil)

	assert.NotPanics(t, m.poll)
}
