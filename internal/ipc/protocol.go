package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snapper"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandSnap              CommandType = "SNAP"
	CommandGetDisplays       CommandType = "GET_DISPLAYS"
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandCheckPermission   CommandType = "CHECK_PERMISSION"
	CommandRequestPermission CommandType = "REQUEST_PERMISSION"
	CommandListBindings      CommandType = "LIST_BINDINGS"
	CommandGetConfig         CommandType = "GET_CONFIG"
	CommandSetBinding        CommandType = "SET_BINDING"
	CommandReload            CommandType = "RELOAD"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Error codes beyond the platform error kinds.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnknownCommand = "unknown_command"
	CodeConfig         = "config_error"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

type SnapPayload struct {
	Position string `json:"position"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

type SnapData struct {
	RequestID   string        `json:"request_id"`
	Position    string        `json:"position"`
	WindowTitle string        `json:"window_title"`
	DisplayID   int           `json:"display_id"`
	From        geometry.Rect `json:"from"`
	Target      geometry.Rect `json:"target"`
	DryRun      bool          `json:"dry_run,omitempty"`
}

// NewSnapData reports a snap outcome on the wire.
func NewSnapData(out snapper.Outcome) SnapData {
	return SnapData{
		RequestID:   out.RequestID,
		Position:    string(out.Position),
		WindowTitle: out.Window.Title,
		DisplayID:   out.Display.ID,
		From:        out.Window.Frame,
		Target:      out.Target,
		DryRun:      out.DryRun,
	}
}

type DisplaysData struct {
	Displays []platform.Display `json:"displays"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Platform      string `json:"platform"`
	Permission    string `json:"permission"`
	Bindings      int    `json:"bindings"`
	Hotkeys       bool   `json:"hotkeys"`
	ConfigPath    string `json:"config_path"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

type PermissionData struct {
	State string `json:"state"`
}

type RequestPermissionPayload struct {
	OpenSettings bool `json:"open_settings,omitempty"`
}

type BindingInfo struct {
	Position string `json:"position"`
	Chord    string `json:"chord"`
}

type BindingsData struct {
	Bindings []BindingInfo `json:"bindings"`
}

type ConfigData struct {
	LogLevel      string            `json:"log_level"`
	Watch         bool              `json:"watch"`
	LaunchAtLogin bool              `json:"launch_at_login"`
	Bindings      map[string]string `json:"bindings"`
}

// SetBindingPayload rebinds one position; an empty chord unbinds it.
type SetBindingPayload struct {
	Position string `json:"position"`
	Chord    string `json:"chord"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message and code
func NewErrorResponse(code, errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
		Code:   code,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
