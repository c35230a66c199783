package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/ipc"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
	"github.com/1broseidon/snapwindow/internal/snapper"
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func writeJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	return exitOK
}

// withLocalBackend runs fn against a backend opened in this process.
func withLocalBackend(fn func(platform.Backend) error) error {
	b, err := platform.Open()
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func runSnap(args []string) int {
	fs := flag.NewFlagSet("snap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow snap [--dry-run] [--local] [--json] <position>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Snap the focused window. Goes through the daemon when it is running,")
		fmt.Fprintln(os.Stderr, "otherwise acts directly.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	dryRun := fs.Bool("dry-run", false, "Compute the target frame without moving the window")
	local := fs.Bool("local", false, "Do not use the daemon")
	jsonOut := fs.Bool("json", false, "Print the result as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "snap requires exactly one <position>")
		fs.Usage()
		return exitUsage
	}
	pos, err := snap.ParsePosition(fs.Arg(0))
	if err != nil {
		return reportError(err)
	}

	data, err := snapPosition(pos, *dryRun, *local)
	if err != nil {
		return reportError(err)
	}
	if *jsonOut {
		return writeJSON(data)
	}
	printSnap(data)
	return exitOK
}

// snapPosition snaps through the daemon, or in-process when local is set or
// the daemon is not running.
func snapPosition(pos snap.Position, dryRun, local bool) (*ipc.SnapData, error) {
	var data *ipc.SnapData
	var err error
	if !local {
		data, err = ipc.NewClient().Snap(string(pos), dryRun)
	}
	if local || errors.Is(err, ipc.ErrDaemonUnavailable) {
		err = withLocalBackend(func(b platform.Backend) error {
			s := snapper.New(b, newLogger(slog.LevelWarn))
			run := s.Snap
			if dryRun {
				run = s.Preview
			}
			out, err := run(pos)
			if err != nil {
				return err
			}
			d := ipc.NewSnapData(out)
			data = &d
			return nil
		})
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func printSnap(data *ipc.SnapData) {
	verb := "snapped"
	if data.DryRun {
		verb = "would snap"
	}
	title := data.WindowTitle
	if title == "" {
		title = "(untitled)"
	}
	fmt.Printf("%s %q to %s on display %d: %s -> %s\n", verb, title, data.Position, data.DisplayID, data.From, data.Target)
}

func runPositions(args []string) int {
	fs := flag.NewFlagSet("positions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow positions [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List snap positions with their configured chords.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	chords := map[snap.Position]string{}
	if cfg, err := config.Load(); err == nil {
		chords = cfg.PositionBindings()
	}

	if *jsonOut {
		infos := make([]ipc.BindingInfo, 0, len(snap.Positions()))
		for _, p := range snap.Positions() {
			infos = append(infos, ipc.BindingInfo{Position: string(p), Chord: chords[p]})
		}
		return writeJSON(infos)
	}
	for _, p := range snap.Positions() {
		chord := chords[p]
		if chord == "" {
			chord = "-"
		}
		fmt.Printf("%-17s %-28s %s\n", p, chord, p.Description())
	}
	return exitOK
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow displays [--json] [--local]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List displays in virtual-screen coordinates. Prints a table on a")
		fmt.Fprintln(os.Stderr, "terminal and JSON otherwise.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	local := fs.Bool("local", false, "Do not use the daemon")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	var displays []platform.Display
	var err error
	if !*local {
		displays, err = ipc.NewClient().Displays()
	}
	if *local || errors.Is(err, ipc.ErrDaemonUnavailable) {
		err = withLocalBackend(func(b platform.Backend) error {
			var derr error
			displays, derr = b.Displays()
			return derr
		})
	}
	if err != nil {
		return reportError(err)
	}

	if *jsonOut || !stdoutIsTerminal() {
		return writeJSON(ipc.DisplaysData{Displays: displays})
	}
	fmt.Printf("%-3s %-14s %-22s %-22s %-6s %s\n", "ID", "NAME", "BOUNDS", "WORK AREA", "SCALE", "PRIMARY")
	for _, d := range displays {
		primary := ""
		if d.Primary {
			primary = "*"
		}
		fmt.Printf("%-3d %-14s %-22s %-22s %-6.2f %s\n", d.ID, d.Name, d.Bounds, d.WorkArea, d.ScaleFactor, primary)
	}
	return exitOK
}

func runPermission(args []string) int {
	fs := flag.NewFlagSet("permission", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow permission [--request] [--open-settings]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Report whether windows of other applications may be moved.")
		fmt.Fprintln(os.Stderr, "Exits 1 when permission is denied.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	request := fs.Bool("request", false, "Show the system permission prompt when not granted")
	openSettings := fs.Bool("open-settings", false, "Open the system settings pane when not granted")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	client := ipc.NewClient()
	var state string
	var err error
	if *request || *openSettings {
		state, err = client.RequestPermission(*openSettings)
	} else {
		state, err = client.CheckPermission()
	}
	if errors.Is(err, ipc.ErrDaemonUnavailable) {
		err = withLocalBackend(func(b platform.Backend) error {
			if *request || *openSettings {
				if err := b.RequestPermission(); err != nil {
					return err
				}
				if *openSettings && b.CheckPermission() != platform.PermissionGranted {
					if err := platform.OpenPermissionSettings(); err != nil {
						return err
					}
				}
			}
			state = b.CheckPermission().String()
			return nil
		})
	}
	if err != nil {
		return reportError(err)
	}

	fmt.Printf("permission: %s\n", state)
	if state == platform.PermissionDenied.String() {
		return exitFailure
	}
	return exitOK
}

func runBindings(args []string) int {
	fs := flag.NewFlagSet("bindings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow bindings [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the daemon's active hotkey table, or the configured one when the")
		fmt.Fprintln(os.Stderr, "daemon is not running.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	bindings, err := ipc.NewClient().Bindings()
	if errors.Is(err, ipc.ErrDaemonUnavailable) {
		var cfg *config.Config
		if cfg, err = config.Load(); err == nil {
			table, terr := cfg.HotkeyTable()
			if terr != nil {
				return reportError(terr)
			}
			bindings = bindings[:0]
			for _, b := range table.Bindings() {
				bindings = append(bindings, ipc.BindingInfo{Position: string(b.Position), Chord: b.Keys})
			}
			fmt.Fprintln(os.Stderr, "daemon not running; showing configured bindings")
		}
	}
	if err != nil {
		return reportError(err)
	}

	if *jsonOut {
		return writeJSON(ipc.BindingsData{Bindings: bindings})
	}
	for _, b := range bindings {
		fmt.Printf("%-28s %s\n", b.Chord, b.Position)
	}
	return exitOK
}

func runBind(args []string) int {
	fs := flag.NewFlagSet("bind", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow bind <position> [chord]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Bind position to chord and save the config. Without a chord the")
		fmt.Fprintln(os.Stderr, "position is disabled.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Example:")
		fmt.Fprintln(os.Stderr, "  snapwindow bind left-half Ctrl+Alt+H")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return exitUsage
	}
	pos, err := snap.ParsePosition(fs.Arg(0))
	if err != nil {
		return reportError(err)
	}
	chord := strings.TrimSpace(fs.Arg(1))

	err = ipc.NewClient().SetBinding(string(pos), chord)
	if errors.Is(err, ipc.ErrDaemonUnavailable) {
		err = config.FileStore{}.SetBinding(string(pos), chord)
	}
	if err != nil {
		return reportError(err)
	}
	if chord == "" {
		fmt.Printf("%s: disabled\n", pos)
	} else {
		fmt.Printf("%s: %s\n", pos, chord)
	}
	return exitOK
}
