package platform

import (
	"os/exec"
	"runtime"
)

const accessibilitySettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"

// OpenPermissionSettings opens the system settings pane where the user grants
// window control. Platforms without such a pane return nil.
func OpenPermissionSettings() error {
	if runtime.GOOS != "darwin" {
		return nil
	}
	if err := exec.Command("open", accessibilitySettingsURL).Run(); err != nil {
		return NativeFailure("open accessibility settings", err)
	}
	return nil
}
