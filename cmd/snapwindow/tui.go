package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/ipc"
	"github.com/1broseidon/snapwindow/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snapwindow tui [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit hotkey bindings interactively. Edits go through the daemon when")
		fmt.Fprintln(os.Stderr, "it is running, otherwise they are written to the config file.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file to edit when the daemon is not running")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	opts, err := tuiOptions(*configPath)
	if err != nil {
		return reportError(err)
	}
	if err := tui.Run(opts); err != nil {
		return reportError(err)
	}
	return exitOK
}

func tuiOptions(configPath string) (tui.Options, error) {
	client := ipc.NewClient()
	if configPath == "" {
		if data, err := client.GetConfig(); err == nil {
			return tui.Options{
				Bindings:  data.Bindings,
				Store:     client,
				Connected: true,
				Source:    "daemon",
			}, nil
		}
	}

	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return tui.Options{}, err
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return tui.Options{}, err
	}
	return tui.Options{
		Bindings: res.Config.Bindings,
		Store:    config.FileStore{Path: path},
		Source:   path,
	}, nil
}
