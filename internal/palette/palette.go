package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single selectable entry in a palette menu.
type Item struct {
	Label string // Display text
	Value string // Returned on selection
	Meta  string // Hidden search keywords (rofi meta field)
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
	Name() string
}

// backendOrder is the detection priority.
var backendOrder = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first available palette backend found in PATH.
func DetectBackend() (string, error) {
	for _, name := range backendOrder {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(backendOrder, ", "))
}

// NewBackend creates a backend by name.
//
// Supported names: auto, rofi, fuzzel, wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	b, ok := newLauncher(name)
	if !ok {
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(backendOrder, ", "))
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", name)
	}
	return b, nil
}
