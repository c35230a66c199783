package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnsupported is returned by registrars on platforms without global
// hotkey support.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Registrar grabs global key chords from the OS.
type Registrar interface {
	Register(chord Chord, callback func()) error
	UnregisterAll() error
	Close() error
}

// Handler manages global keyboard shortcuts
type Handler struct {
	mu         sync.Mutex
	registrar  Registrar
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a new hotkey handler.
func NewHandler(registrar Registrar, dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		registrar:  registrar,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Apply makes table the active binding set: every previously grabbed chord
// is released, the dispatcher switches to table and each binding is grabbed.
// A chord that fails to register is reported but does not stop the rest.
func (h *Handler) Apply(table *Table) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.registrar.UnregisterAll(); err != nil {
		return fmt.Errorf("failed to release hotkeys: %w", err)
	}
	h.dispatcher.Replace(table)

	var errs []error
	for _, b := range table.Bindings() {
		id := b.Keys
		if err := h.registrar.Register(b.Chord, func() {
			h.dispatcher.Dispatch(id)
		}); err != nil {
			h.logger.Warn("failed to register hotkey", "chord", id, "position", string(b.Position), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		h.logger.Debug("hotkey registered", "chord", id, "position", string(b.Position))
	}
	return errors.Join(errs...)
}

// Close releases all chords and the registrar.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return errors.Join(h.registrar.UnregisterAll(), h.registrar.Close())
}
