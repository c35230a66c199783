package hotkeys

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// ErrInvalidChord is wrapped by every ParseChord failure.
var ErrInvalidChord = errors.New("invalid key chord")

// Chord is a set of modifiers plus one key. Key holds the canonical key name
// (e.g. "Left", "T", "F5").
type Chord struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Super bool
	Key   string
}

type keyName struct {
	name   string // canonical, as printed by Chord.String
	keysym string // X11 keysym name
}

var namedKeys = map[string]keyName{
	"left":      {"Left", "Left"},
	"right":     {"Right", "Right"},
	"up":        {"Up", "Up"},
	"down":      {"Down", "Down"},
	"enter":     {"Enter", "Return"},
	"return":    {"Enter", "Return"},
	"space":     {"Space", "space"},
	"escape":    {"Escape", "Escape"},
	"esc":       {"Escape", "Escape"},
	"tab":       {"Tab", "Tab"},
	"home":      {"Home", "Home"},
	"end":       {"End", "End"},
	"pageup":    {"PageUp", "Prior"},
	"prior":     {"PageUp", "Prior"},
	"pagedown":  {"PageDown", "Next"},
	"next":      {"PageDown", "Next"},
	"backspace": {"Backspace", "BackSpace"},
	"delete":    {"Delete", "Delete"},
	"del":       {"Delete", "Delete"},
	"insert":    {"Insert", "Insert"},
}

// ParseChord parses "Ctrl+Alt+Left", "CommandOrControl+Alt+Enter" or the
// xgbutil form "Mod4-Mod1-t". CommandOrControl means Super on macOS and Ctrl
// elsewhere.
func ParseChord(s string) (Chord, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Chord{}, fmt.Errorf("%w: empty", ErrInvalidChord)
	}

	sep := "+"
	if !strings.Contains(trimmed, "+") {
		sep = "-"
	}
	parts := strings.Split(trimmed, sep)

	var c Chord
	for i, raw := range parts {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return Chord{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidChord, s)
		}
		if i == len(parts)-1 {
			key, ok := canonicalKey(tok)
			if !ok {
				return Chord{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidChord, tok, s)
			}
			c.Key = key
			break
		}
		if err := c.setModifier(tok); err != nil {
			return Chord{}, fmt.Errorf("%w: %v in %q", ErrInvalidChord, err, s)
		}
	}

	if !c.Ctrl && !c.Alt && !c.Super {
		return Chord{}, fmt.Errorf("%w: %q needs Ctrl, Alt or Super", ErrInvalidChord, s)
	}
	return c, nil
}

func (c *Chord) setModifier(tok string) error {
	var flag *bool
	switch strings.ToLower(tok) {
	case "ctrl", "control", "ctl":
		flag = &c.Ctrl
	case "alt", "option", "opt", "mod1":
		flag = &c.Alt
	case "shift":
		flag = &c.Shift
	case "super", "cmd", "command", "win", "meta", "mod4":
		flag = &c.Super
	case "commandorcontrol", "cmdorctrl":
		if runtime.GOOS == "darwin" {
			flag = &c.Super
		} else {
			flag = &c.Ctrl
		}
	default:
		return fmt.Errorf("unknown modifier %q", tok)
	}
	if *flag {
		return fmt.Errorf("duplicate modifier %q", tok)
	}
	*flag = true
	return nil
}

func canonicalKey(tok string) (string, bool) {
	lower := strings.ToLower(tok)
	if k, ok := namedKeys[lower]; ok {
		return k.name, true
	}
	if len(lower) == 1 {
		ch := lower[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return strings.ToUpper(lower), true
		case ch >= '0' && ch <= '9':
			return lower, true
		}
	}
	if n, ok := functionKey(lower); ok {
		return fmt.Sprintf("F%d", n), true
	}
	return "", false
}

func functionKey(lower string) (int, bool) {
	if len(lower) < 2 || lower[0] != 'f' {
		return 0, false
	}
	n, err := strconv.Atoi(lower[1:])
	if err != nil || lower[1] < '1' || lower[1] > '9' || n > 24 {
		return 0, false
	}
	return n, true
}

// String is the canonical form used as the dispatch table key.
func (c Chord) String() string {
	parts := make([]string, 0, 5)
	if c.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if c.Alt {
		parts = append(parts, "Alt")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	if c.Super {
		parts = append(parts, "Super")
	}
	return strings.Join(append(parts, c.Key), "+")
}

// KeybindString renders the chord for xgbutil's keybind package.
func (c Chord) KeybindString() string {
	parts := make([]string, 0, 5)
	if c.Ctrl {
		parts = append(parts, "Control")
	}
	if c.Alt {
		parts = append(parts, "Mod1")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	if c.Super {
		parts = append(parts, "Mod4")
	}
	return strings.Join(append(parts, c.keysym()), "-")
}

func (c Chord) keysym() string {
	if k, ok := namedKeys[strings.ToLower(c.Key)]; ok {
		return k.keysym
	}
	if len(c.Key) == 1 {
		return strings.ToLower(c.Key)
	}
	return c.Key
}
