package ipc

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/platform/platformtest"
	"github.com/1broseidon/snapwindow/internal/snap"
	"github.com/1broseidon/snapwindow/internal/snapper"
)

type stubService struct {
	mu       sync.Mutex
	snapper  *snapper.Snapper
	backend  *platformtest.Fake
	cfg      *config.Config
	reloads  int
	reloadFn func() error
}

func newStubService() *stubService {
	r := geometry.Rect{Width: 1920, Height: 1080}
	fake := platformtest.NewFake(platform.Display{ID: 0, Name: "primary", Bounds: r, WorkArea: r, ScaleFactor: 1, Primary: true})
	return &stubService{
		snapper: snapper.New(fake, nil),
		backend: fake,
		cfg:     config.DefaultConfig(),
	}
}

func (s *stubService) Snap(position snap.Position, dryRun bool) (snapper.Outcome, error) {
	if dryRun {
		return s.snapper.Preview(position)
	}
	return s.snapper.Snap(position)
}

func (s *stubService) Displays() ([]platform.Display, error) { return s.backend.Displays() }

func (s *stubService) CheckPermission() platform.PermissionState { return s.backend.CheckPermission() }

func (s *stubService) RequestPermission(bool) (platform.PermissionState, error) {
	if err := s.backend.RequestPermission(); err != nil {
		return platform.PermissionUnknown, err
	}
	return s.backend.CheckPermission(), nil
}

func (s *stubService) Bindings() []hotkeys.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, err := s.cfg.HotkeyTable()
	if err != nil {
		return nil
	}
	return table.Bindings()
}

func (s *stubService) HotkeysActive() bool { return true }

func (s *stubService) Config() (*config.Config, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, "/tmp/config.yaml"
}

func (s *stubService) SetBinding(position snap.Position, chord string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Bindings[string(position)] = chord
	return s.cfg.Validate()
}

func (s *stubService) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
	if s.reloadFn != nil {
		return s.reloadFn()
	}
	return nil
}

func startServer(t *testing.T, svc Service) (*Server, *Client) {
	t.Helper()
	// Unix socket paths are length limited; keep them short.
	dir, err := os.MkdirTemp("", "swipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "s.sock")
	srv, err := NewServer(path, svc, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, NewClientWithPath(path)
}

func TestServer_SnapMovesFocusedWindow(t *testing.T) {
	svc := newStubService()
	svc.backend.Focus(platform.Window{Handle: 1, Title: "term", Frame: geometry.Rect{X: 10, Y: 10, Width: 300, Height: 200}})
	_, client := startServer(t, svc)

	data, err := client.Snap("Left_Half", false)
	require.NoError(t, err)
	assert.Equal(t, "left-half", data.Position)
	assert.Equal(t, "term", data.WindowTitle)
	assert.Equal(t, geometry.Rect{Width: 960, Height: 1080}, data.Target)
	assert.NotEmpty(t, data.RequestID)
	require.Len(t, svc.backend.Frames(), 1)
}

func TestServer_SnapDryRunDoesNotMove(t *testing.T) {
	svc := newStubService()
	svc.backend.Focus(platform.Window{Handle: 1, Frame: geometry.Rect{Width: 300, Height: 200}})
	_, client := startServer(t, svc)

	data, err := client.Snap("center", true)
	require.NoError(t, err)
	assert.True(t, data.DryRun)
	assert.Equal(t, geometry.Rect{X: 320, Y: 180, Width: 1280, Height: 720}, data.Target)
	assert.Empty(t, svc.backend.Frames())
}

func TestServer_SnapErrorsCarryKind(t *testing.T) {
	svc := newStubService()
	_, client := startServer(t, svc)

	_, err := client.Snap("maximize", false)
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Equal(t, string(platform.KindNoFocusedWindow), cmdErr.Code)
	assert.ErrorIs(t, err, platform.ErrNoFocusedWindow)

	svc.backend.Permission = platform.PermissionDenied
	_, err = client.Snap("maximize", false)
	assert.ErrorIs(t, err, platform.ErrPermissionDenied)
}

func TestServer_SnapUnknownPosition(t *testing.T) {
	_, client := startServer(t, newStubService())

	_, err := client.Snap("diagonal", false)
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, CodeInvalidRequest, cmdErr.Code)
}

func TestServer_DisplaysStatusAndPermission(t *testing.T) {
	_, client := startServer(t, newStubService())

	displays, err := client.Displays()
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "primary", displays[0].Name)

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, "granted", status.Permission)
	assert.Equal(t, len(snap.Positions()), status.Bindings)
	assert.Equal(t, "/tmp/config.yaml", status.ConfigPath)

	state, err := client.CheckPermission()
	require.NoError(t, err)
	assert.Equal(t, "granted", state)

	state, err = client.RequestPermission(false)
	require.NoError(t, err)
	assert.Equal(t, "granted", state)
}

func TestServer_BindingsAndConfig(t *testing.T) {
	svc := newStubService()
	_, client := startServer(t, svc)

	bindings, err := client.Bindings()
	require.NoError(t, err)
	require.NotEmpty(t, bindings)
	assert.Equal(t, string(snap.LeftHalf), bindings[0].Position)

	require.NoError(t, client.SetBinding("center", "Super+C"))
	cfg, err := client.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "Super+C", cfg.Bindings["center"])

	err = client.SetBinding("center", "Super+Nope")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, CodeConfig, cmdErr.Code)
}

func TestServer_Reload(t *testing.T) {
	svc := newStubService()
	_, client := startServer(t, svc)

	require.NoError(t, client.Reload())
	assert.Equal(t, 1, svc.reloads)

	svc.reloadFn = func() error { return errors.New("bad yaml") }
	err := client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad yaml")
}

func TestServer_UnknownCommandAndBadJSON(t *testing.T) {
	srv, client := startServer(t, newStubService())

	_, err := client.sendRequest("DANCE", nil)
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, CodeUnknownCommand, cmdErr.Code)

	conn, err := net.Dial("unix", srv.SocketPath())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), CodeInvalidRequest)
}

func TestNewServer_RefusesLiveSocket(t *testing.T) {
	srv, _ := startServer(t, newStubService())

	_, err := NewServer(srv.SocketPath(), newStubService(), nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestClient_DaemonUnavailable(t *testing.T) {
	client := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	assert.ErrorIs(t, client.Ping(), ErrDaemonUnavailable)
}
