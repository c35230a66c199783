package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/snapwindow/internal/platform"
)

// PermissionMonitor periodically re-checks the window-control permission and
// reports transitions. The user can grant or revoke it at any time in system
// settings without restarting the daemon.
type PermissionMonitor struct {
	interval time.Duration
	check    func() platform.PermissionState
	onChange func(prev, next platform.PermissionState)
	logger   *slog.Logger
	last     platform.PermissionState
}

// NewPermissionMonitor creates a monitor polling check every interval.
func NewPermissionMonitor(interval time.Duration, check func() platform.PermissionState, onChange func(prev, next platform.PermissionState), logger *slog.Logger) *PermissionMonitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PermissionMonitor{
		interval: interval,
		check:    check,
		onChange: onChange,
		logger:   logger,
		last:     check(),
	}
}

// Run starts the polling loop. Blocks until context is cancelled.
func (m *PermissionMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("permission monitor started", "interval", m.interval, "state", m.last.String())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *PermissionMonitor) poll() {
	// A native permission query must never take the daemon down.
	defer func() {
		if err := recover(); err != nil {
			m.logger.Error("permission check panic recovered", "error", err)
		}
	}()

	next := m.check()
	if next == m.last {
		return
	}
	prev := m.last
	m.last = next
	m.logger.Info("window control permission changed", "from", prev.String(), "to", next.String())
	if m.onChange != nil {
		m.onChange(prev, next)
	}
}
