package palette

import (
	"fmt"

	"github.com/1broseidon/snapwindow/internal/snap"
)

// PositionItems lists every snap position in canonical order with its chord
// next to the description.
func PositionItems(chords map[snap.Position]string) []Item {
	items := make([]Item, 0, len(snap.Positions()))
	for _, p := range snap.Positions() {
		label := p.Description()
		if chord := chords[p]; chord != "" {
			label = fmt.Sprintf("%s  [%s]", label, chord)
		}
		items = append(items, Item{
			Label: label,
			Value: string(p),
			Meta:  string(p),
		})
	}
	return items
}

// PickPosition shows the position palette and returns the chosen position.
func PickPosition(b Backend, chords map[snap.Position]string) (snap.Position, error) {
	item, err := b.Show("snap", PositionItems(chords))
	if err != nil {
		return "", err
	}
	return snap.ParsePosition(item.Value)
}
