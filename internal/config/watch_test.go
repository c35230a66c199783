package config

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcher_ReloadsValidAndSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "bindings:\n  center: Super+C\n")

	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	changes := make(chan *Config, 4)
	w := NewWatcher(path, logger, func(res *LoadResult) {
		changes <- res.Config
	})
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, "bindings:\n  center: Super+X\n")
	select {
	case cfg := <-changes:
		assert.Equal(t, "Super+X", cfg.Bindings["center"])
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	writeFile(t, path, "bindings:\n  center: Ctrl+Alt+Nope\n")
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(logs.String()), []byte("config reload rejected"))
	}, 3*time.Second, 20*time.Millisecond)

	select {
	case cfg := <-changes:
		t.Fatalf("invalid config should not be delivered, got %+v", cfg.Bindings)
	default:
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	changes := make(chan *Config, 1)
	w := NewWatcher(path, nil, func(res *LoadResult) { changes <- res.Config })
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "other.yaml"), "log_level: debug\n")

	select {
	case <-changes:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
