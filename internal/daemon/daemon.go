// Package daemon runs the long-lived snap service: native hotkeys, the IPC
// socket, config hot reload and permission tracking around one backend.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/snapwindow/internal/autostart"
	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/hotkeys"
	"github.com/1broseidon/snapwindow/internal/ipc"
	"github.com/1broseidon/snapwindow/internal/platform"
	"github.com/1broseidon/snapwindow/internal/snap"
	"github.com/1broseidon/snapwindow/internal/snapper"
)

// Options configures a Daemon. Zero values select the native implementations.
type Options struct {
	ConfigPath string
	SocketPath string
	Logger     *slog.Logger
	// Level, when set, follows the config log_level across reloads.
	Level *slog.LevelVar

	Backend            platform.Backend
	Registrar          hotkeys.Registrar
	Autostart          autostart.Manager
	PermissionInterval time.Duration
}

// eventLooper is implemented by backends whose hotkey callbacks are delivered
// from a blocking event loop (X11).
type eventLooper interface {
	EventLoop()
	QuitEventLoop()
}

// Daemon owns every long-lived component. It implements ipc.Service.
type Daemon struct {
	logger     *slog.Logger
	level      *slog.LevelVar
	configPath string
	interval   time.Duration

	backend    platform.Backend
	closer     io.Closer
	snapper    *snapper.Serialized
	dispatcher *hotkeys.Dispatcher
	handler    *hotkeys.Handler
	autostart  autostart.Manager
	server     *ipc.Server

	// applyMu serialises config changes from the watcher, RELOAD and
	// SET_BINDING.
	applyMu sync.Mutex
	mu      sync.RWMutex
	cfg     *config.Config

	closeOnce sync.Once
	closeErr  error
}

var _ ipc.Service = (*Daemon)(nil)

// New loads the config, connects to the window system, grabs hotkeys and
// starts listening on the IPC socket. Call Run to serve until shutdown.
func New(opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", "path", path, "files", len(res.Files), "bindings", len(res.Config.PositionBindings()))

	d := &Daemon{
		logger:     logger,
		level:      opts.Level,
		configPath: path,
		interval:   opts.PermissionInterval,
		backend:    opts.Backend,
		autostart:  opts.Autostart,
	}

	if d.backend == nil {
		exportDisplayEnv(res.Config)
		native, err := platform.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to window system: %w", err)
		}
		d.backend = native
		d.closer = native
	}

	d.snapper = snapper.NewSerialized(snapper.New(d.backend, logger))
	d.dispatcher = hotkeys.NewDispatcher(d.snapper, nil, logger)

	registrar := opts.Registrar
	if registrar == nil {
		registrar, err = hotkeys.NewRegistrar(d.backend)
		if err != nil {
			if !errors.Is(err, hotkeys.ErrUnsupported) {
				d.Close()
				return nil, err
			}
			logger.Warn("global hotkeys unavailable, snaps are only accepted over IPC", "error", err)
		}
	}
	if registrar != nil {
		d.handler = hotkeys.NewHandler(registrar, d.dispatcher, logger)
	}

	if d.autostart == nil {
		if exe, err := os.Executable(); err == nil {
			if m, err := autostart.New(exe); err == nil {
				d.autostart = m
			} else {
				logger.Debug("launch at login unavailable", "error", err)
			}
		}
	}

	if err := d.apply(res.Config); err != nil {
		d.Close()
		return nil, err
	}

	server, err := ipc.NewServer(opts.SocketPath, d, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	if err := server.Start(); err != nil {
		d.Close()
		return nil, err
	}
	d.server = server

	return d, nil
}

// Run serves hotkeys, config reloads and permission tracking until ctx is
// cancelled, then releases everything.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.Close()

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	cfg, _ := d.Config()
	if cfg.Watch {
		watcher := config.NewWatcher(d.configPath, d.logger, func(res *config.LoadResult) {
			if err := d.apply(res.Config); err != nil {
				d.logger.Warn("config reload rejected, keeping previous bindings", "error", err)
			}
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil {
				d.logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	monitor := NewPermissionMonitor(d.interval, d.backend.CheckPermission, nil, d.logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	d.logger.Info("snapwindow daemon started", "socket", d.server.SocketPath(), "hotkeys", d.HotkeysActive())

	if el, ok := d.backend.(eventLooper); ok && d.handler != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			el.EventLoop()
		}()
		select {
		case <-ctx.Done():
			// The loop only notices Quit after its next event; closing the
			// connection in Close unblocks it otherwise.
			el.QuitEventLoop()
			select {
			case <-done:
			case <-time.After(time.Second):
			}
		case <-done:
			d.logger.Warn("window system event loop exited")
		}
	} else {
		<-ctx.Done()
	}

	d.logger.Info("shutting down snapwindow daemon")
	return nil
}

// Close releases hotkeys, the socket and the window system connection.
func (d *Daemon) Close() error {
	d.closeOnce.Do(func() {
		var errs []error
		if d.handler != nil {
			errs = append(errs, d.handler.Close())
		}
		if d.server != nil {
			d.server.Stop()
		}
		if d.closer != nil {
			errs = append(errs, d.closer.Close())
		}
		d.closeErr = errors.Join(errs...)
	})
	return d.closeErr
}

// apply installs cfg: the hotkey table is replaced wholesale, then the log
// level and login item follow.
func (d *Daemon) apply(cfg *config.Config) error {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()
	return d.applyLocked(cfg)
}

func (d *Daemon) applyLocked(cfg *config.Config) error {
	table, err := cfg.HotkeyTable()
	if err != nil {
		return err
	}

	if d.handler != nil {
		if err := d.handler.Apply(table); err != nil {
			d.logger.Warn("some hotkeys could not be registered", "error", err)
		}
	} else {
		d.dispatcher.Replace(table)
	}

	if d.level != nil {
		d.level.Set(cfg.SlogLevel())
	}

	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	if d.autostart != nil {
		if changed, err := autostart.Sync(d.autostart, cfg.LaunchAtLogin); err != nil {
			d.logger.Warn("failed to update launch at login", "error", err)
		} else if changed {
			d.logger.Info("launch at login updated", "enabled", cfg.LaunchAtLogin)
		}
	}

	d.logger.Debug("bindings applied", "count", table.Len())
	return nil
}

// exportDisplayEnv points the X11 client at the configured display before
// connecting. Other platforms ignore these variables.
func exportDisplayEnv(cfg *config.Config) {
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
}

func (d *Daemon) Snap(position snap.Position, dryRun bool) (snapper.Outcome, error) {
	if dryRun {
		return d.snapper.Preview(position)
	}
	return d.snapper.Snap(position)
}

func (d *Daemon) Displays() ([]platform.Display, error) {
	return d.backend.Displays()
}

func (d *Daemon) CheckPermission() platform.PermissionState {
	return d.backend.CheckPermission()
}

func (d *Daemon) RequestPermission(openSettings bool) (platform.PermissionState, error) {
	if err := d.backend.RequestPermission(); err != nil {
		return platform.PermissionUnknown, err
	}
	if openSettings && d.backend.CheckPermission() != platform.PermissionGranted {
		if err := platform.OpenPermissionSettings(); err != nil {
			return platform.PermissionUnknown, err
		}
	}
	return d.backend.CheckPermission(), nil
}

func (d *Daemon) Bindings() []hotkeys.Binding {
	return d.dispatcher.Table().Bindings()
}

func (d *Daemon) HotkeysActive() bool {
	return d.handler != nil
}

// Config returns a copy of the active config and the file it came from.
func (d *Daemon) Config() (*config.Config, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.cfg == nil {
		return nil, d.configPath
	}
	return d.cfg.Clone(), d.configPath
}

// SetBinding rebinds position, writes the config file and applies it. An
// empty chord disables the position.
func (d *Daemon) SetBinding(position snap.Position, chord string) error {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	d.mu.RLock()
	cfg := d.cfg.Clone()
	d.mu.RUnlock()

	cfg.Bindings[string(position)] = strings.TrimSpace(chord)
	if err := cfg.SaveTo(d.configPath); err != nil {
		return err
	}
	return d.applyLocked(cfg)
}

// Reload re-reads the config file. An invalid file leaves the active
// bindings untouched.
func (d *Daemon) Reload() error {
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		d.logger.Warn("config reload rejected, keeping previous bindings", "error", err)
		return err
	}
	if err := d.apply(res.Config); err != nil {
		return err
	}
	d.logger.Info("config reloaded", "path", d.configPath)
	return nil
}
