package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/runtimepath"
	"github.com/1broseidon/snapwindow/internal/snap"
	"github.com/1broseidon/snapwindow/internal/snapper"
)

// ErrAlreadyRunning is returned by NewServer when another daemon answers on
// the socket.
var ErrAlreadyRunning = errors.New("daemon already running")

// Service is what the daemon exposes over the socket.
type Service interface {
	Snap(position snap.Position, dryRun bool) (snapper.Outcome, error)
	Displays() ([]platform.Display, error)
	CheckPermission() platform.PermissionState
	RequestPermission(openSettings bool) (platform.PermissionState, error)
	Bindings() []hotkeys.Binding
	HotkeysActive() bool
	Config() (*config.Config, string)
	SetBinding(position snap.Position, chord string) error
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	svc          Service
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on socketPath, or on the default runtime
// socket when socketPath is empty. A stale socket left by a crashed daemon is
// removed.
func NewServer(socketPath string, svc Service, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond); err == nil {
		conn.Close()
		return nil, fmt.Errorf("%w on %s", ErrAlreadyRunning, socketPath)
	}
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		svc:        svc,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		s.logger.Warn("failed to set socket permissions", "path", s.socketPath, "error", err)
	}

	s.logger.Info("IPC server listening", "path", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one request on conn.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", string(req.Command))

	switch req.Command {
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandCheckPermission:
		return ok(PermissionData{State: s.svc.CheckPermission().String()})
	case CommandRequestPermission:
		return s.handleRequestPermission(req.Payload)
	case CommandListBindings:
		return s.handleListBindings()
	case CommandGetConfig:
		return s.handleGetConfig()
	case CommandSetBinding:
		return s.handleSetBinding(req.Payload)
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(CodeUnknownCommand, fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var req SnapPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("invalid snap payload: %v", err))
	}
	pos, err := snap.ParsePosition(req.Position)
	if err != nil {
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	}

	out, err := s.svc.Snap(pos, req.DryRun)
	if err != nil {
		return errorResponse(err)
	}
	return ok(NewSnapData(out))
}

func (s *Server) handleGetDisplays() *Response {
	displays, err := s.svc.Displays()
	if err != nil {
		return errorResponse(err)
	}
	return ok(DisplaysData{Displays: displays})
}

func (s *Server) handleGetStatus() *Response {
	_, path := s.svc.Config()
	return ok(StatusData{
		Platform:      runtime.GOOS,
		Permission:    s.svc.CheckPermission().String(),
		Bindings:      len(s.svc.Bindings()),
		Hotkeys:       s.svc.HotkeysActive(),
		ConfigPath:    path,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func (s *Server) handleRequestPermission(payload json.RawMessage) *Response {
	var req RequestPermissionPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("invalid permission payload: %v", err))
	}
	state, err := s.svc.RequestPermission(req.OpenSettings)
	if err != nil {
		return errorResponse(err)
	}
	return ok(PermissionData{State: state.String()})
}

func (s *Server) handleListBindings() *Response {
	bindings := s.svc.Bindings()
	infos := make([]BindingInfo, len(bindings))
	for i, b := range bindings {
		infos[i] = BindingInfo{Position: string(b.Position), Chord: b.Keys}
	}
	return ok(BindingsData{Bindings: infos})
}

func (s *Server) handleGetConfig() *Response {
	cfg, _ := s.svc.Config()
	if cfg == nil {
		return NewErrorResponse(CodeConfig, "no config loaded")
	}
	return ok(ConfigData{
		LogLevel:      cfg.LogLevel,
		Watch:         cfg.Watch,
		LaunchAtLogin: cfg.LaunchAtLogin,
		Bindings:      cfg.Bindings,
	})
}

func (s *Server) handleSetBinding(payload json.RawMessage) *Response {
	var req SetBindingPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(CodeInvalidRequest, fmt.Sprintf("invalid binding payload: %v", err))
	}
	pos, err := snap.ParsePosition(req.Position)
	if err != nil {
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	}
	if err := s.svc.SetBinding(pos, req.Chord); err != nil {
		return NewErrorResponse(CodeConfig, err.Error())
	}
	s.logger.Info("binding updated over IPC", "position", string(pos), "chord", req.Chord)
	return ok(nil)
}

func (s *Server) handleReload() *Response {
	s.logger.Info("IPC: received RELOAD command")
	if err := s.svc.Reload(); err != nil {
		return NewErrorResponse(CodeConfig, fmt.Sprintf("failed to reload config: %v", err))
	}
	return ok(nil)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	}
	return resp
}

// errorResponse reports err with its failure kind as the code.
func errorResponse(err error) *Response {
	if errors.Is(err, snap.ErrUnknownPosition) {
		return NewErrorResponse(CodeInvalidRequest, err.Error())
	}
	return NewErrorResponse(string(platform.KindOf(err)), err.Error())
}
