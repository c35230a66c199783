package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopEntry_EnableDisable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	entry := desktopEntry(dir, "/usr/local/bin/snapwindow")

	assert.False(t, entry.IsEnabled())

	changed, err := Sync(entry, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, entry.IsEnabled())

	data, err := os.ReadFile(filepath.Join(dir, "snapwindow.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exec=/usr/local/bin/snapwindow daemon\n")

	changed, err = Sync(entry, true)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = Sync(entry, false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, entry.IsEnabled())

	require.NoError(t, entry.Disable())
}

func TestDesktopEntry_StaleContentIsNotEnabled(t *testing.T) {
	dir := t.TempDir()
	old := desktopEntry(dir, "/opt/old/snapwindow")
	require.NoError(t, old.Enable())

	current := desktopEntry(dir, "/opt/new/snapwindow")
	assert.False(t, current.IsEnabled())

	_, err := Sync(current, true)
	require.NoError(t, err)
	assert.True(t, current.IsEnabled())
}

func TestQuoteExec(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/usr/bin/snapwindow", "/usr/bin/snapwindow"},
		{"/home/me/My Apps/snapwindow", `"/home/me/My Apps/snapwindow"`},
		{`/tmp/a$b`, `"/tmp/a\$b"`},
	}
	for _, tt := range tests {
		if got := quoteExec(tt.in); got != tt.want {
			t.Errorf("quoteExec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	assert.False(t, strings.Contains(quoteExec("plain"), `"`))
}
