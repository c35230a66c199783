package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Store persists one binding edit. An empty chord disables the position.
type Store interface {
	SetBinding(position, chord string) error
}

// Options configures the bindings editor.
type Options struct {
	// Bindings maps canonical position names to chords.
	Bindings  map[string]string
	Store     Store
	Connected bool   // edits go through a running daemon
	Source    string // where bindings were read from, for the status bar
}

// Run starts the bindings editor and blocks until the user quits.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if opts.Store == nil {
		return fmt.Errorf("tui: no binding store")
	}
	_, err := tea.NewProgram(newModel(opts), tea.WithAltScreen()).Run()
	return err
}
