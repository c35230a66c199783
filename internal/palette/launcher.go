package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcher drives any dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	kind    launcherKind

	// indexOutput backends print the selected row index instead of its text.
	indexOutput bool
	markup      bool
}

func newLauncher(name string) (*launcher, bool) {
	switch name {
	case "rofi":
		return &launcher{command: "rofi", kind: kindRofi, indexOutput: true, markup: true}, true
	case "fuzzel":
		return &launcher{command: "fuzzel", kind: kindFuzzel, indexOutput: true}, true
	case "wofi":
		return &launcher{command: "wofi", kind: kindWofi}, true
	case "dmenu":
		return &launcher{command: "dmenu", kind: kindDmenu}, true
	}
	return nil, false
}

func (b *launcher) Name() string { return b.command }

func (b *launcher) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	displayItems := make([]Item, len(items))
	copy(displayItems, items)

	cmd := exec.Command(b.command, b.buildArgs(prompt)...)
	cmd.Stdin = strings.NewReader(b.formatInput(displayItems))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", b.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", b.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}

	return b.parseSelection(selection, displayItems)
}

func (b *launcher) buildArgs(prompt string) []string {
	var args []string

	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		// Labels may contain markup, so select by index.
		args = append(args, "-format", "i", "-no-custom", "-markup-rows")

	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindWofi:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}

	return args
}

// formatInput renders one line per item.
func (b *launcher) formatInput(items []Item) string {
	// Text-matching backends need unique labels.
	if !b.indexOutput {
		seen := make(map[string]int)
		for i := range items {
			key := sanitizeLabel(items[i].Label)
			if key == "" {
				continue
			}
			if count := seen[key]; count > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, b.formatItem(item))
	}
	return strings.Join(lines, "\n")
}

func (b *launcher) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if b.markup {
		display = html.EscapeString(display)
	}
	if b.kind != kindRofi {
		return display
	}

	// Rofi row properties: a single NUL, then key/value pairs delimited by \x1f.
	if item.Meta == "" {
		return display
	}
	return display + "\x00meta\x1f" + sanitizeRofiField(item.Meta)
}

func (b *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if b.indexOutput {
		idx, err := strconv.Atoi(selection)
		if err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 is "no selection", 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
