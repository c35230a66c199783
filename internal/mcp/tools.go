package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
)

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, SnapWindowOutput, error) {
	pos, err := snap.ParsePosition(args.Position)
	if err != nil {
		return nil, SnapWindowOutput{}, fmt.Errorf("%w; call list_positions for valid names", err)
	}

	run := s.snapper.Snap
	if args.DryRun {
		run = s.snapper.Preview
	}
	out, err := run(pos)
	if err != nil {
		s.logger.Warn("snap_window failed", "position", string(pos), "kind", platform.KindOf(err), "error", err)
		return nil, SnapWindowOutput{}, fmt.Errorf("%s: %w", platform.KindOf(err), err)
	}

	return nil, SnapWindowOutput{
		RequestID:   out.RequestID,
		Position:    string(out.Position),
		WindowTitle: out.Window.Title,
		DisplayID:   out.Display.ID,
		From:        out.Window.Frame,
		Target:      out.Target,
		DryRun:      out.DryRun,
	}, nil
}

func (s *Server) handleListPositions(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPositionsInput) (*mcpsdk.CallToolResult, ListPositionsOutput, error) {
	var chords map[snap.Position]string
	if s.config != nil {
		chords = s.config.PositionBindings()
	}

	positions := snap.Positions()
	infos := make([]PositionInfo, len(positions))
	for i, p := range positions {
		infos[i] = PositionInfo{
			Name:        string(p),
			Description: p.Description(),
			Chord:       chords[p],
		}
	}
	return nil, ListPositionsOutput{Positions: infos}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	displays, err := s.backend.Displays()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("%s: %w", platform.KindOf(err), err)
	}
	return nil, ListDisplaysOutput{Displays: displays}, nil
}

func (s *Server) handleCheckPermission(_ context.Context, _ *mcpsdk.CallToolRequest, args CheckPermissionInput) (*mcpsdk.CallToolResult, CheckPermissionOutput, error) {
	state := s.backend.CheckPermission()
	if args.Request && state != platform.PermissionGranted {
		if err := s.backend.RequestPermission(); err != nil {
			return nil, CheckPermissionOutput{}, fmt.Errorf("%s: %w", platform.KindOf(err), err)
		}
		state = s.backend.CheckPermission()
	}

	out := CheckPermissionOutput{State: state.String()}
	if state == platform.PermissionDenied {
		out.Hint = "grant Accessibility access in System Settings > Privacy & Security, then retry"
	}
	return nil, out, nil
}
