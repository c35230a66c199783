package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/snapwindow/internal/daemon"
	"github.com/1broseidon/snapwindow/internal/ipc"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(exitOK)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "snap":
		os.Exit(runSnap(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "positions":
		os.Exit(runPositions(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "permission":
		os.Exit(runPermission(os.Args[2:]))
	case "bindings":
		os.Exit(runBindings(os.Args[2:]))
	case "bind":
		os.Exit(runBind(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(exitOK)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(exitUsage)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: snapwindow <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the snapwindow daemon (foreground)")
	fmt.Fprintln(w, "  snap <position>     Snap the focused window")
	fmt.Fprintln(w, "  pick                Choose a position from a launcher menu and snap")
	fmt.Fprintln(w, "  positions           List snap positions")
	fmt.Fprintln(w, "  displays            List displays and work areas")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  permission          Check or request window control permission")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  bindings            List active hotkey bindings")
	fmt.Fprintln(w, "  bind <pos> <chord>  Rebind a position (empty chord disables it)")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "  tui                 Edit bindings interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snapwindow <command> --help' for command-specific options.")
}

// parseFlags parses args and maps flag errors to exit codes. ok is false when
// the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}

func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// reportError prints err for a human and returns the exit code.
func reportError(err error) int {
	var cmdErr *ipc.CommandError
	switch {
	case errors.Is(err, snap.ErrUnknownPosition):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Run 'snapwindow positions' for valid names.")
		return exitUsage
	case errors.Is(err, ipc.ErrDaemonUnavailable):
		fmt.Fprintln(os.Stderr, "snapwindow daemon is not running (start it with 'snapwindow daemon')")
	case errors.As(err, &cmdErr) && cmdErr.Code != "":
		fmt.Fprintf(os.Stderr, "%s [%s]\n", cmdErr.Message, cmdErr.Code)
	case errors.Is(err, platform.ErrPermissionDenied):
		fmt.Fprintf(os.Stderr, "%v [%s]\n", err, platform.KindOf(err))
		fmt.Fprintln(os.Stderr, "Run 'snapwindow permission --request --open-settings' to grant access.")
	default:
		if kind := platform.KindOf(err); kind != platform.KindNativeAPIFailure {
			fmt.Fprintf(os.Stderr, "%v [%s]\n", err, kind)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return exitFailure
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow daemon [--config PATH] [--socket PATH] [--log-level LEVEL]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run in the foreground: grab hotkeys, serve IPC and reload config on change.")
		fmt.Fprintln(os.Stderr, "SIGHUP reloads the configuration.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	cfgPath := fs.String("config", "", "Config file path (default: <user config dir>/snapwindow/config.yaml)")
	socket := fs.String("socket", "", "IPC socket path (default: $SNAPWINDOW_SOCKET or the runtime dir)")
	logLevel := fs.String("log-level", "", "Override config log_level (debug, info, warn, error)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return exitUsage
	}

	level := new(slog.LevelVar)
	opts := daemon.Options{
		ConfigPath: *cfgPath,
		SocketPath: *socket,
		Level:      level,
	}
	if *logLevel != "" {
		l, err := parseLevel(*logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --log-level: %v\n", err)
			return exitUsage
		}
		level.Set(l)
		opts.Level = nil
	}
	logger := newLogger(level)
	opts.Logger = logger

	d, err := daemon.New(opts)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, err)
			return exitFailure
		}
		logger.Error("failed to start daemon", "error", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				_ = d.Reload()
			}
		}
	}()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon stopped", "error", err)
		return exitFailure
	}
	return exitOK
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return exitUsage
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		return reportError(err)
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("platform:       %s\n", status.Platform)
	fmt.Printf("permission:     %s\n", status.Permission)
	fmt.Printf("hotkeys:        %v\n", status.Hotkeys)
	fmt.Printf("bindings:       %d\n", status.Bindings)
	fmt.Printf("config_path:    %s\n", status.ConfigPath)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return exitOK
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to re-read its config. An invalid file keeps the current bindings.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return exitUsage
	}

	if err := ipc.NewClient().Reload(); err != nil {
		return reportError(err)
	}
	fmt.Println("config: reloaded")
	return exitOK
}
