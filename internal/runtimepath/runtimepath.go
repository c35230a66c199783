package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SocketEnv overrides the socket path for both daemon and clients.
const SocketEnv = "SNAPWINDOW_SOCKET"

// Dir returns the runtime directory that holds the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present, Linux only)
// 3) <os temp dir>/snapwindow-runtime-<uid> (created 0700)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	if runtime.GOOS == "linux" {
		runUserDir := fmt.Sprintf("/run/user/%d", uid)
		if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
			return runUserDir, nil
		}
	}

	tmpDir := filepath.Join(os.TempDir(), fmt.Sprintf("snapwindow-runtime-%d", uid))
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "snapwindow.sock"), nil
}
