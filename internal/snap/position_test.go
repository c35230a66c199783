package snap

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := map[string]Position{
		"left-half":          LeftHalf,
		"left_half":          LeftHalf,
		"LeftHalf":           LeftHalf,
		" RIGHT-HALF ":       RightHalf,
		"TopRightQuarter":    TopRight,
		"bottom_left":        BottomLeft,
		"center":             Center,
		"centre":             Center,
		"CenterThird":        CenterThird,
		"right-two-thirds":   RightTwoThirds,
		"left two thirds":    LeftTwoThirds,
		"maximize":           Maximize,
		"bottomRightQuarter": BottomRight,
	}
	for in, want := range tests {
		got, err := ParsePosition(in)
		if err != nil {
			t.Fatalf("ParsePosition(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePosition(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePosition_Unknown(t *testing.T) {
	for _, in := range []string{"", "   ", "diagonal", "left-quarter"} {
		if _, err := ParsePosition(in); !errors.Is(err, ErrUnknownPosition) {
			t.Fatalf("ParsePosition(%q) error = %v, want ErrUnknownPosition", in, err)
		}
	}
}

func TestPositions_AllValidAndDescribed(t *testing.T) {
	all := Positions()
	if len(all) != 15 {
		t.Fatalf("expected 15 positions, got %d", len(all))
	}
	seen := make(map[Position]bool)
	for _, p := range all {
		if seen[p] {
			t.Fatalf("duplicate position %q", p)
		}
		seen[p] = true
		if !p.Valid() {
			t.Fatalf("position %q reports invalid", p)
		}
		if p.Description() == string(p) {
			t.Fatalf("position %q has no description", p)
		}
		if got, err := ParsePosition(string(p)); err != nil || got != p {
			t.Fatalf("round trip %q -> %q, %v", p, got, err)
		}
	}
	if Position("diagonal").Valid() {
		t.Fatal("unknown position reported valid")
	}
}

func TestPositions_ReturnsCopy(t *testing.T) {
	all := Positions()
	all[0] = "mutated"
	if Positions()[0] != LeftHalf {
		t.Fatal("Positions exposed internal slice")
	}
}
