package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	chordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	changedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// renderStatusBar shows where edits are written.
func renderStatusBar(connected bool, source string, dirty int, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = dot + " daemon connected"
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}
	if source != "" {
		status += "  " + source
	}
	if dirty > 0 {
		status += "  " + changedStyle.Render(pluralChanges(dirty))
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

func pluralChanges(n int) string {
	if n == 1 {
		return "1 unsaved change"
	}
	return fmt.Sprintf("%d unsaved changes", n)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(editing bool, width int) string {
	help := "enter: edit  x: disable  d: default  ctrl-s: save  q: quit"
	if editing {
		help = "enter: confirm (empty disables)  esc: cancel"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
