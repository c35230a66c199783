package hotkeys

import (
	"log/slog"
	"sync/atomic"

	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
)

// Snapper performs snap requests.
type Snapper interface {
	SnapFocusedWindow(position snap.Position) error
}

// Dispatcher turns fired chords into snap requests using the active table.
type Dispatcher struct {
	table   atomic.Pointer[Table]
	snapper Snapper
	logger  *slog.Logger
}

// NewDispatcher returns a dispatcher starting with table (which may be nil).
func NewDispatcher(snapper Snapper, table *Table, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{snapper: snapper, logger: logger}
	d.table.Store(table)
	return d
}

// Replace swaps in a new table. In-flight dispatches keep the table they
// loaded.
func (d *Dispatcher) Replace(table *Table) {
	d.table.Store(table)
}

// Table returns the active table.
func (d *Dispatcher) Table() *Table {
	return d.table.Load()
}

// Dispatch handles a fired chord. Unknown chords and snap failures are
// logged, never returned.
func (d *Dispatcher) Dispatch(chordID string) {
	pos, ok := d.table.Load().Lookup(chordID)
	if !ok {
		d.logger.Warn("hotkey not bound", "chord", chordID)
		return
	}

	d.logger.Debug("hotkey fired", "chord", chordID, "position", string(pos))
	if err := d.snapper.SnapFocusedWindow(pos); err != nil {
		d.logger.Warn("snap failed",
			"chord", chordID,
			"position", string(pos),
			"kind", string(platform.KindOf(err)),
			"error", err,
		)
	}
}
