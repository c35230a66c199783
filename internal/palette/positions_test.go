package palette

import (
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/snapwindow/internal/snap"
)

type fakeBackend struct {
	pick   func([]Item) (Item, error)
	prompt string
	shown  []Item
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Show(prompt string, items []Item) (Item, error) {
	f.prompt = prompt
	f.shown = items
	return f.pick(items)
}

func TestPositionItems(t *testing.T) {
	items := PositionItems(map[snap.Position]string{snap.LeftHalf: "Super+Left"})

	if len(items) != len(snap.Positions()) {
		t.Fatalf("expected %d items, got %d", len(snap.Positions()), len(items))
	}
	if items[0].Value != string(snap.LeftHalf) || !strings.Contains(items[0].Label, "[Super+Left]") {
		t.Fatalf("expected left-half with chord first, got %+v", items[0])
	}
	if strings.Contains(items[1].Label, "[") {
		t.Fatalf("expected unbound position without chord, got %q", items[1].Label)
	}
	if items[len(items)-1].Meta != string(snap.Maximize) {
		t.Fatalf("expected maximize last with its name as search keyword, got %+v", items[len(items)-1])
	}
}

func TestPickPosition(t *testing.T) {
	b := &fakeBackend{pick: func(items []Item) (Item, error) { return items[3], nil }}

	pos, err := PickPosition(b, nil)
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if pos != snap.BottomHalf {
		t.Fatalf("expected bottom-half, got %s", pos)
	}
	if b.prompt != "snap" {
		t.Fatalf("expected snap prompt, got %q", b.prompt)
	}
}

func TestPickPosition_Cancelled(t *testing.T) {
	b := &fakeBackend{pick: func([]Item) (Item, error) { return Item{}, ErrCancelled }}
	if _, err := PickPosition(b, nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}
