package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/runtimepath"
)

// ErrDaemonUnavailable is returned when nothing listens on the socket.
var ErrDaemonUnavailable = errors.New("daemon is not running")

// CommandError is an ERROR response from the daemon.
type CommandError struct {
	Code    string
	Message string
}

func (e *CommandError) Error() string {
	return "daemon error: " + e.Message
}

// Unwrap maps platform failure codes back to their sentinels so callers can
// use errors.Is across the socket.
func (e *CommandError) Unwrap() error {
	switch platform.Kind(e.Code) {
	case platform.KindPermissionDenied:
		return platform.ErrPermissionDenied
	case platform.KindNoFocusedWindow:
		return platform.ErrNoFocusedWindow
	case platform.KindWindowNotFound:
		return platform.ErrWindowNotFound
	case platform.KindNoDisplaysFound:
		return platform.ErrNoDisplaysFound
	case platform.KindNativeAPIFailure:
		return platform.ErrNativeAPI
	}
	return nil
}

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for the socket at path.
func NewClientWithPath(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(command CommandType, payload any) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == StatusError {
		return nil, &CommandError{Code: resp.Code, Message: resp.Error}
	}

	return &resp, nil
}

func (c *Client) call(command CommandType, payload any, out any) error {
	resp, err := c.sendRequest(command, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Snap asks the daemon to snap its focused window.
func (c *Client) Snap(position string, dryRun bool) (*SnapData, error) {
	var data SnapData
	if err := c.call(CommandSnap, SnapPayload{Position: position, DryRun: dryRun}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Displays lists the daemon's view of the attached displays.
func (c *Client) Displays() ([]platform.Display, error) {
	var data DisplaysData
	if err := c.call(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return data.Displays, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CheckPermission returns the daemon's permission state.
func (c *Client) CheckPermission() (string, error) {
	var data PermissionData
	if err := c.call(CommandCheckPermission, nil, &data); err != nil {
		return "", err
	}
	return data.State, nil
}

// RequestPermission prompts for permission, optionally opening the system
// settings pane, and returns the resulting state.
func (c *Client) RequestPermission(openSettings bool) (string, error) {
	var data PermissionData
	if err := c.call(CommandRequestPermission, RequestPermissionPayload{OpenSettings: openSettings}, &data); err != nil {
		return "", err
	}
	return data.State, nil
}

// Bindings lists the active hotkey table.
func (c *Client) Bindings() ([]BindingInfo, error) {
	var data BindingsData
	if err := c.call(CommandListBindings, nil, &data); err != nil {
		return nil, err
	}
	return data.Bindings, nil
}

// GetConfig returns the daemon's effective config.
func (c *Client) GetConfig() (*ConfigData, error) {
	var data ConfigData
	if err := c.call(CommandGetConfig, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SetBinding rebinds position to chord and persists the config. An empty
// chord unbinds the position.
func (c *Client) SetBinding(position, chord string) error {
	return c.call(CommandSetBinding, SetBindingPayload{Position: position, Chord: chord}, nil)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
