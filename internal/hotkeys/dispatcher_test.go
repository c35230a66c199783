package hotkeys

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
)

type recordingSnapper struct {
	mu    sync.Mutex
	calls []snap.Position
	err   error
}

func (r *recordingSnapper) SnapFocusedWindow(p snap.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, p)
	return r.err
}

func (r *recordingSnapper) positions() []snap.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]snap.Position(nil), r.calls...)
}

type fakeRegistrar struct {
	registered map[string]func()
	failOn     string
	releases   int
	closed     bool
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{registered: make(map[string]func())}
}

func (f *fakeRegistrar) Register(c Chord, cb func()) error {
	if c.String() == f.failOn {
		return errors.New("grab failed")
	}
	f.registered[c.String()] = cb
	return nil
}

func (f *fakeRegistrar) UnregisterAll() error {
	f.releases++
	f.registered = make(map[string]func())
	return nil
}

func (f *fakeRegistrar) Close() error {
	f.closed = true
	return nil
}

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func mustTable(t *testing.T, bindings map[snap.Position]string) *Table {
	t.Helper()
	table, err := NewTable(bindings)
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	table := mustTable(t, map[snap.Position]string{
		snap.LeftHalf:  "Ctrl+Alt+Left",
		snap.RightHalf: "ctrl-alt-right",
		snap.Center:    "",
	})

	assert.Equal(t, 2, table.Len())
	pos, ok := table.Lookup("Ctrl+Alt+Right")
	assert.True(t, ok)
	assert.Equal(t, snap.RightHalf, pos)

	_, ok = table.Lookup("Ctrl+Alt+C")
	assert.False(t, ok)

	bindings := table.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, snap.LeftHalf, bindings[0].Position)
	assert.Equal(t, "Ctrl+Alt+Left", bindings[0].Keys)
}

func TestNewTable_Rejects(t *testing.T) {
	_, err := NewTable(map[snap.Position]string{
		snap.LeftHalf:  "Ctrl+Alt+Left",
		snap.LeftThird: "Alt+Ctrl+Left",
	})
	assert.ErrorContains(t, err, "bound to both")

	_, err = NewTable(map[snap.Position]string{snap.LeftHalf: "Ctrl+Alt+Nope"})
	assert.ErrorIs(t, err, ErrInvalidChord)

	_, err = NewTable(map[snap.Position]string{snap.Position("diagonal"): "Ctrl+Alt+D"})
	assert.ErrorIs(t, err, snap.ErrUnknownPosition)
}

func TestNilTableLookup(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("Ctrl+Alt+Left")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Bindings())
}

func TestDispatch_CallsSnapperForBoundChord(t *testing.T) {
	s := &recordingSnapper{}
	d := NewDispatcher(s, mustTable(t, map[snap.Position]string{snap.Maximize: "Ctrl+Alt+Enter"}), nil)

	d.Dispatch("Ctrl+Alt+Enter")
	assert.Equal(t, []snap.Position{snap.Maximize}, s.positions())
}

func TestDispatch_UnknownChordLoggedAndIgnored(t *testing.T) {
	var buf bytes.Buffer
	s := &recordingSnapper{}
	d := NewDispatcher(s, mustTable(t, map[snap.Position]string{snap.Maximize: "Ctrl+Alt+Enter"}), bufferLogger(&buf))

	d.Dispatch("Ctrl+Alt+Q")
	assert.Empty(t, s.positions())
	assert.Contains(t, buf.String(), "hotkey not bound")
	assert.Contains(t, buf.String(), "Ctrl+Alt+Q")
}

func TestDispatch_SnapErrorLoggedWithKind(t *testing.T) {
	var buf bytes.Buffer
	s := &recordingSnapper{err: platform.ErrNoFocusedWindow}
	d := NewDispatcher(s, mustTable(t, map[snap.Position]string{snap.Center: "Ctrl+Alt+C"}), bufferLogger(&buf))

	assert.NotPanics(t, func() { d.Dispatch("Ctrl+Alt+C") })
	assert.Contains(t, buf.String(), "snap failed")
	assert.Contains(t, buf.String(), "kind=no_focused_window")
}

func TestDispatch_ReplaceSwapsWholeTable(t *testing.T) {
	s := &recordingSnapper{}
	d := NewDispatcher(s, mustTable(t, map[snap.Position]string{snap.LeftHalf: "Ctrl+Alt+Left"}), nil)

	d.Replace(mustTable(t, map[snap.Position]string{snap.RightHalf: "Ctrl+Alt+Right"}))

	d.Dispatch("Ctrl+Alt+Left")
	d.Dispatch("Ctrl+Alt+Right")
	assert.Equal(t, []snap.Position{snap.RightHalf}, s.positions())
}

func TestDispatch_NilTable(t *testing.T) {
	s := &recordingSnapper{}
	d := NewDispatcher(s, nil, nil)
	d.Dispatch("Ctrl+Alt+Left")
	assert.Empty(t, s.positions())
}

func TestHandlerApply_ReregistersWholesale(t *testing.T) {
	reg := newFakeRegistrar()
	s := &recordingSnapper{}
	d := NewDispatcher(s, nil, nil)
	h := NewHandler(reg, d, nil)

	require.NoError(t, h.Apply(mustTable(t, map[snap.Position]string{
		snap.LeftHalf:  "Ctrl+Alt+Left",
		snap.RightHalf: "Ctrl+Alt+Right",
	})))
	assert.Len(t, reg.registered, 2)

	reg.registered["Ctrl+Alt+Left"]()
	assert.Equal(t, []snap.Position{snap.LeftHalf}, s.positions())

	require.NoError(t, h.Apply(mustTable(t, map[snap.Position]string{
		snap.Maximize: "Ctrl+Alt+Enter",
	})))
	assert.Equal(t, 2, reg.releases)
	assert.Len(t, reg.registered, 1)
	assert.Contains(t, reg.registered, "Ctrl+Alt+Enter")
	assert.Equal(t, 1, d.Table().Len())
}

func TestHandlerApply_PartialFailureKeepsOthers(t *testing.T) {
	reg := newFakeRegistrar()
	reg.failOn = "Ctrl+Alt+Right"
	h := NewHandler(reg, NewDispatcher(&recordingSnapper{}, nil, nil), nil)

	err := h.Apply(mustTable(t, map[snap.Position]string{
		snap.LeftHalf:  "Ctrl+Alt+Left",
		snap.RightHalf: "Ctrl+Alt+Right",
	}))
	assert.ErrorContains(t, err, "Ctrl+Alt+Right")
	assert.Contains(t, reg.registered, "Ctrl+Alt+Left")
	assert.NotContains(t, reg.registered, "Ctrl+Alt+Right")
}

func TestHandlerClose(t *testing.T) {
	reg := newFakeRegistrar()
	h := NewHandler(reg, NewDispatcher(&recordingSnapper{}, nil, nil), nil)
	require.NoError(t, h.Close())
	assert.True(t, reg.closed)
}
