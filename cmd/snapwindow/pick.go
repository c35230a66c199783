package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/palette"
	"github.com/1broseidon/snapwindow/internal/snap"
)

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow pick [--backend NAME] [--dry-run] [--local]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Choose a position from a launcher menu and snap the focused window.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	backendName := fs.String("backend", "auto", "Launcher to use: auto, rofi, fuzzel, wofi, dmenu")
	dryRun := fs.Bool("dry-run", false, "Compute the target frame without moving the window")
	local := fs.Bool("local", false, "Do not use the daemon")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	b, err := palette.NewBackend(*backendName)
	if err != nil {
		return reportError(err)
	}

	chords := map[snap.Position]string{}
	if cfg, err := config.Load(); err == nil {
		chords = cfg.PositionBindings()
	}

	pos, err := palette.PickPosition(b, chords)
	if errors.Is(err, palette.ErrCancelled) {
		return exitOK
	}
	if err != nil {
		return reportError(err)
	}

	data, err := snapPosition(pos, *dryRun, *local)
	if err != nil {
		return reportError(err)
	}
	printSnap(data)
	return exitOK
}
