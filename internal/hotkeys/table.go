package hotkeys

import (
	"fmt"

	"github.com/1broseidon/snapwindow/internal/snap"
)

// Binding ties a chord to the position it triggers.
type Binding struct {
	Chord    Chord         `json:"-"`
	Keys     string        `json:"chord"`
	Position snap.Position `json:"position"`
}

// Table is an immutable chord to position map. A reload builds a new Table
// and swaps it in whole.
type Table struct {
	byChord  map[string]Binding
	bindings []Binding
}

// NewTable builds a table from position to chord text. Empty chords leave a
// position unbound. Unknown positions, unparsable chords and chords bound
// twice are errors.
func NewTable(bindings map[snap.Position]string) (*Table, error) {
	for pos := range bindings {
		if !pos.Valid() {
			return nil, fmt.Errorf("binding for %q: %w", pos, snap.ErrUnknownPosition)
		}
	}

	t := &Table{byChord: make(map[string]Binding, len(bindings))}
	for _, pos := range snap.Positions() {
		text, ok := bindings[pos]
		if !ok || text == "" {
			continue
		}
		chord, err := ParseChord(text)
		if err != nil {
			return nil, fmt.Errorf("binding for %s: %w", pos, err)
		}
		key := chord.String()
		if prev, dup := t.byChord[key]; dup {
			return nil, fmt.Errorf("chord %s bound to both %s and %s", key, prev.Position, pos)
		}
		b := Binding{Chord: chord, Keys: key, Position: pos}
		t.byChord[key] = b
		t.bindings = append(t.bindings, b)
	}
	return t, nil
}

// Lookup returns the position bound to the canonical chord id.
func (t *Table) Lookup(chordID string) (snap.Position, bool) {
	if t == nil {
		return "", false
	}
	b, ok := t.byChord[chordID]
	return b.Position, ok
}

// Bindings returns the bindings in canonical position order.
func (t *Table) Bindings() []Binding {
	if t == nil {
		return nil
	}
	out := make([]Binding, len(t.bindings))
	copy(out, t.bindings)
	return out
}

// Len returns the number of bound chords.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}
