// Package snapper moves the focused window to a snap position.
package snapper

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
)

// Outcome describes a completed (or previewed) snap.
type Outcome struct {
	RequestID string           `json:"request_id"`
	Position  snap.Position    `json:"position"`
	Window    platform.Window  `json:"window"`
	Display   platform.Display `json:"display"`
	Target    geometry.Rect    `json:"target"`
	DryRun    bool             `json:"dry_run,omitempty"`
}

// Snapper resolves the focused window and its display, computes the target
// frame and applies it in one call. It keeps no state between calls and
// never retries: a failed snap is reported once.
type Snapper struct {
	backend platform.Backend
	logger  *slog.Logger
}

// New returns a Snapper over backend. A nil logger discards output.
func New(backend platform.Backend, logger *slog.Logger) *Snapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Snapper{backend: backend, logger: logger}
}

// SnapFocusedWindow moves the focused window to position. Backend errors are
// returned unwrapped.
func (s *Snapper) SnapFocusedWindow(position snap.Position) error {
	_, err := s.Snap(position)
	return err
}

// Snap is SnapFocusedWindow reporting what was moved where.
func (s *Snapper) Snap(position snap.Position) (Outcome, error) {
	return s.run(position, false)
}

// Preview resolves the window and target without moving anything.
func (s *Snapper) Preview(position snap.Position) (Outcome, error) {
	return s.run(position, true)
}

func (s *Snapper) run(position snap.Position, dryRun bool) (Outcome, error) {
	out := Outcome{
		RequestID: uuid.NewString(),
		Position:  position,
		DryRun:    dryRun,
	}
	log := s.logger.With("request_id", out.RequestID, "position", string(position))

	if !position.Valid() {
		return out, fmt.Errorf("%w: %q", snap.ErrUnknownPosition, position)
	}

	if s.backend.CheckPermission() == platform.PermissionDenied {
		log.Debug("permission denied before snap")
		return out, platform.ErrPermissionDenied
	}

	win, err := s.backend.FocusedWindow()
	if err != nil {
		log.Debug("no window to snap", "error", err)
		return out, err
	}
	out.Window = win

	display, err := s.backend.CurrentDisplay(win)
	if err != nil {
		log.Debug("display lookup failed", "window", win.Title, "error", err)
		return out, err
	}
	out.Display = display
	out.Target = snap.ComputeTargetRect(position, display)

	if dryRun {
		log.Debug("snap preview", "display", display.ID, "from", win.Frame.String(), "to", out.Target.String())
		return out, nil
	}

	if err := s.backend.SetWindowFrame(win, out.Target); err != nil {
		log.Debug("set window frame failed", "window", win.Title, "error", err)
		return out, err
	}

	log.Info("window snapped",
		"window", win.Title,
		"display", display.ID,
		"from", win.Frame.String(),
		"to", out.Target.String(),
	)
	return out, nil
}

// Serialized wraps a Snapper so concurrent triggers (hotkeys, IPC, MCP) never
// race two frame changes against each other.
type Serialized struct {
	mu    sync.Mutex
	inner *Snapper
}

// NewSerialized wraps s.
func NewSerialized(s *Snapper) *Serialized {
	return &Serialized{inner: s}
}

func (s *Serialized) SnapFocusedWindow(position snap.Position) error {
	_, err := s.Snap(position)
	return err
}

func (s *Serialized) Snap(position snap.Position) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Snap(position)
}

func (s *Serialized) Preview(position snap.Position) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Preview(position)
}
