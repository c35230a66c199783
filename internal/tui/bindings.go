package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/snap"
)

// bindingItem is a list item for one snap position.
type bindingItem struct {
	pos     snap.Position
	chord   string
	changed bool
}

func (i bindingItem) Title() string {
	title := string(i.pos)
	if i.changed {
		title += " " + changedStyle.Render("*")
	}
	return title
}

func (i bindingItem) Description() string {
	chord := disabledStyle.Render("disabled")
	if i.chord != "" {
		chord = chordStyle.Render(i.chord)
	}
	return chord + "  " + i.pos.Description()
}

func (i bindingItem) FilterValue() string { return string(i.pos) }

// buildItems lists every position in canonical order.
func buildItems(current, saved map[string]string) []list.Item {
	items := make([]list.Item, 0, len(snap.Positions()))
	for _, p := range snap.Positions() {
		key := string(p)
		items = append(items, bindingItem{
			pos:     p,
			chord:   current[key],
			changed: current[key] != saved[key],
		})
	}
	return items
}

// checkChord validates text as the new chord for pos against the other
// bindings. Empty text is valid and disables pos.
func checkChord(bindings map[string]string, pos snap.Position, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	chord, err := hotkeys.ParseChord(text)
	if err != nil {
		return err
	}
	id := chord.String()
	for _, other := range snap.Positions() {
		if other == pos || bindings[string(other)] == "" {
			continue
		}
		oc, err := hotkeys.ParseChord(bindings[string(other)])
		if err != nil {
			continue
		}
		if oc.String() == id {
			return fmt.Errorf("chord %s is already bound to %s", id, other)
		}
	}
	return nil
}

// changedPositions returns the positions whose chord differs from saved, in
// canonical order.
func changedPositions(current, saved map[string]string) []snap.Position {
	var out []snap.Position
	for _, p := range snap.Positions() {
		if current[string(p)] != saved[string(p)] {
			out = append(out, p)
		}
	}
	return out
}
