package snap

import (
	"errors"
	"fmt"
	"strings"
)

// Position names a screen-relative layout a window can be snapped to.
type Position string

const (
	LeftHalf       Position = "left-half"
	RightHalf      Position = "right-half"
	TopHalf        Position = "top-half"
	BottomHalf     Position = "bottom-half"
	TopLeft        Position = "top-left"
	TopRight       Position = "top-right"
	BottomLeft     Position = "bottom-left"
	BottomRight    Position = "bottom-right"
	LeftThird      Position = "left-third"
	CenterThird    Position = "center-third"
	RightThird     Position = "right-third"
	LeftTwoThirds  Position = "left-two-thirds"
	RightTwoThirds Position = "right-two-thirds"
	Center         Position = "center"
	Maximize       Position = "maximize"
)

// ErrUnknownPosition is returned by ParsePosition for names outside the set.
var ErrUnknownPosition = errors.New("unknown snap position")

var positions = []Position{
	LeftHalf,
	RightHalf,
	TopHalf,
	BottomHalf,
	TopLeft,
	TopRight,
	BottomLeft,
	BottomRight,
	LeftThird,
	CenterThird,
	RightThird,
	LeftTwoThirds,
	RightTwoThirds,
	Center,
	Maximize,
}

var descriptions = map[Position]string{
	LeftHalf:       "Left half of the screen",
	RightHalf:      "Right half of the screen",
	TopHalf:        "Top half of the screen",
	BottomHalf:     "Bottom half of the screen",
	TopLeft:        "Top-left quarter",
	TopRight:       "Top-right quarter",
	BottomLeft:     "Bottom-left quarter",
	BottomRight:    "Bottom-right quarter",
	LeftThird:      "Left third",
	CenterThird:    "Center third",
	RightThird:     "Right third",
	LeftTwoThirds:  "Left two thirds",
	RightTwoThirds: "Right two thirds",
	Center:         "Centered at two thirds size",
	Maximize:       "Fill the work area",
}

// aliases maps folded spellings that do not fold to a canonical name.
var aliases = map[string]Position{
	"topleftquarter":     TopLeft,
	"toprightquarter":    TopRight,
	"bottomleftquarter":  BottomLeft,
	"bottomrightquarter": BottomRight,
	"centre":             Center,
	"centrethird":        CenterThird,
	"max":                Maximize,
}

// Positions returns every position in canonical order.
func Positions() []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// ParsePosition accepts kebab-case, snake_case and CamelCase spellings,
// e.g. "left-half", "left_half" and "LeftHalf".
func ParsePosition(s string) (Position, error) {
	key := fold(s)
	if key == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownPosition)
	}
	for _, p := range positions {
		if fold(string(p)) == key {
			return p, nil
		}
	}
	if p, ok := aliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	_, ok := placements[p]
	return ok || p == Center
}

// Description returns a short human-readable label.
func (p Position) Description() string {
	if d, ok := descriptions[p]; ok {
		return d
	}
	return string(p)
}

func (p Position) String() string { return string(p) }

func fold(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
