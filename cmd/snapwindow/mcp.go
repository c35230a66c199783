package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/mcp"
	"github.com/1broseidon/snapwindow/internal/platform"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: snapwindow mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapwindow mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return exitUsage
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return exitUsage
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow mcp serve [--log-level LEVEL]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Designed to be invoked by MCP clients.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Example:")
		fmt.Fprintln(os.Stderr, "  claude mcp add snapwindow -- snapwindow mcp serve")
	}
	logLevel := fs.String("log-level", "warn", "Log level for stderr (debug, info, warn, error)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level: %v\n", err)
		return exitUsage
	}
	// stdout carries the protocol; logs go to stderr only.
	logger := newLogger(level)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config not loaded, list_positions will omit chords", "error", err)
		cfg = nil
	}

	backend, err := platform.Open()
	if err != nil {
		logger.Error("failed to connect to window system", "error", err)
		return exitFailure
	}
	defer backend.Close()

	server := mcp.NewServer(backend, cfg, logger.With(slog.String("component", "mcp")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return exitFailure
	}
	return exitOK
}
