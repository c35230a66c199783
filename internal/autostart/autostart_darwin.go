//go:build darwin

package autostart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

const launchAgentLabel = "com.1broseidon." + AppName

// New returns the launchd LaunchAgent for exe.
func New(exe string) (Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return launchAgent(filepath.Join(home, "Library", "LaunchAgents"), exe), nil
}

func launchAgent(dir, exe string) *fileEntry {
	var escaped bytes.Buffer
	xml.EscapeText(&escaped, []byte(exe))

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>daemon</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>ProcessType</key>
	<string>Interactive</string>
</dict>
</plist>
`, launchAgentLabel, escaped.String())
	return &fileEntry{
		path:    filepath.Join(dir, launchAgentLabel+".plist"),
		content: []byte(content),
	}
}
