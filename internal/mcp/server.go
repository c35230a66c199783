// Package mcp exposes window snapping as Model Context Protocol tools over
// stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
	"github.com/1broseidon/snapwindow/internal/snapper"
)

const (
	ServerName    = "snapwindow"
	ServerVersion = "0.1.0"
)

// Snapper is the orchestrator surface the tools drive.
type Snapper interface {
	Snap(position snap.Position) (snapper.Outcome, error)
	Preview(position snap.Position) (snapper.Outcome, error)
}

// Server is the MCP server for window snapping.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   platform.Backend
	snapper   Snapper
	config    *config.Config
	logger    *slog.Logger
}

// NewServer creates an MCP server acting on backend. cfg supplies the chords
// reported by list_positions and may be nil.
func NewServer(backend platform.Backend, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		backend: backend,
		snapper: snapper.NewSerialized(snapper.New(backend, logger)),
		config:  cfg,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap the currently focused window to a position on the display it occupies. Positions are halves, quarters, thirds, two-thirds, center and maximize, computed from the display work area. Set dry_run to get the target frame without moving anything.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_positions",
		Description: "List the snap positions accepted by snap_window together with their configured hotkeys.",
	}, s.handleListPositions)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List attached displays with bounds, work area and scale factor in virtual-screen coordinates.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "check_permission",
		Description: "Report whether the process may move other applications' windows. On macOS this is the Accessibility permission; set request to show the system prompt.",
	}, s.handleCheckPermission)
}
