package mcp

import (
	"github.com/1broseidon/snapwindow/internal/geometry"
	"github.com/1broseidon/snapwindow/internal/platform"
)

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	Position string `json:"position" jsonschema:"Snap position, e.g. left-half, top-right, center-third, maximize. See list_positions."`
	DryRun   bool   `json:"dry_run,omitempty" jsonschema:"When true, compute the target frame without moving the window"`
}

// SnapWindowOutput is the output for the snap_window tool.
type SnapWindowOutput struct {
	RequestID   string        `json:"request_id"`
	Position    string        `json:"position"`
	WindowTitle string        `json:"window_title"`
	DisplayID   int           `json:"display_id"`
	From        geometry.Rect `json:"from"`
	Target      geometry.Rect `json:"target"`
	DryRun      bool          `json:"dry_run"`
}

// ListPositionsInput is the input for the list_positions tool.
type ListPositionsInput struct{}

// PositionInfo describes one snap position.
type PositionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Chord       string `json:"chord,omitempty"`
}

// ListPositionsOutput is the output for the list_positions tool.
type ListPositionsOutput struct {
	Positions []PositionInfo `json:"positions"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []platform.Display `json:"displays"`
}

// CheckPermissionInput is the input for the check_permission tool.
type CheckPermissionInput struct {
	Request bool `json:"request,omitempty" jsonschema:"When true and permission is missing, trigger the system permission prompt"`
}

// CheckPermissionOutput is the output for the check_permission tool.
type CheckPermissionOutput struct {
	State string `json:"state"`
	Hint  string `json:"hint,omitempty"`
}
