package tui

import (
	"fmt"
	"maps"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapwindow/internal/config"
	"github.com/1broseidon/snapwindow/internal/snap"
)

// model is the root bubbletea model for the bindings editor.
type model struct {
	store     Store
	connected bool
	source    string

	// bindings is the working copy; saved is what the store last accepted.
	bindings map[string]string
	saved    map[string]string

	list  list.Model
	input textinput.Model

	editing bool
	confirm *huh.Form // discard prompt, set while visible

	message string
	isError bool

	width  int
	height int
}

func newModel(opts Options) model {
	bindings := make(map[string]string, len(snap.Positions()))
	for _, p := range snap.Positions() {
		bindings[string(p)] = strings.TrimSpace(opts.Bindings[string(p)])
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildItems(bindings, bindings), delegate, 0, 0)
	l.Title = "Snap Bindings"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "e.g. Ctrl+Alt+Left, Super+Enter"
	ti.CharLimit = 64

	return model{
		store:     opts.Store,
		connected: opts.Connected,
		source:    opts.Source,
		bindings:  bindings,
		saved:     maps.Clone(bindings),
		list:      l,
		input:     ti,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.list.SetSize(m.width, m.contentHeight())
		return m, nil
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.editing {
		return m.updateEditing(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			if m.dirty() == 0 {
				return m, tea.Quit
			}
			m.confirm = newDiscardForm()
			return m, m.confirm.Init()

		case "ctrl+s":
			m.save()
			return m, nil

		case "enter", "e":
			item, ok := m.list.SelectedItem().(bindingItem)
			if !ok {
				return m, nil
			}
			m.editing = true
			m.message = ""
			m.input.SetValue(item.chord)
			m.input.CursorEnd()
			m.input.Focus()
			return m, textinput.Blink

		case "x", "delete":
			if item, ok := m.list.SelectedItem().(bindingItem); ok {
				m.setChord(item.pos, "")
			}
			return m, nil

		case "d":
			if item, ok := m.list.SelectedItem().(bindingItem); ok {
				def := config.DefaultBindings()[string(item.pos)]
				if err := checkChord(m.bindings, item.pos, def); err != nil {
					m.setMessage(err.Error(), true)
					return m, nil
				}
				m.setChord(item.pos, def)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.editing = false
			m.input.Blur()
			return m, nil
		case "enter":
			item, ok := m.list.SelectedItem().(bindingItem)
			if !ok {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if err := checkChord(m.bindings, item.pos, text); err != nil {
				m.setMessage(err.Error(), true)
				return m, nil
			}
			m.editing = false
			m.input.Blur()
			m.setChord(item.pos, text)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		discard := m.confirm.GetBool("discard")
		m.confirm = nil
		if discard {
			return m, tea.Quit
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

func newDiscardForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("discard").
				Title("Discard unsaved changes?").
				Affirmative("Discard").
				Negative("Keep editing"),
		),
	).WithShowHelp(false)
}

// setChord updates the working copy and refreshes the list.
func (m *model) setChord(pos snap.Position, chord string) {
	m.bindings[string(pos)] = chord
	m.refresh()
	if chord == "" {
		m.setMessage(fmt.Sprintf("%s disabled", pos), false)
	} else {
		m.setMessage(fmt.Sprintf("%s → %s", pos, chord), false)
	}
}

// save pushes every changed binding to the store. Changed positions are
// cleared first so chords can move between positions without a transient
// duplicate.
func (m *model) save() {
	changed := changedPositions(m.bindings, m.saved)
	if len(changed) == 0 {
		m.setMessage("no changes to save", false)
		return
	}

	for _, p := range changed {
		if m.saved[string(p)] == "" {
			continue
		}
		if err := m.store.SetBinding(string(p), ""); err != nil {
			m.setMessage(fmt.Sprintf("save failed at %s: %v", p, err), true)
			return
		}
		m.saved[string(p)] = ""
	}
	for _, p := range changed {
		chord := m.bindings[string(p)]
		if chord == "" {
			continue
		}
		if err := m.store.SetBinding(string(p), chord); err != nil {
			m.refresh()
			m.setMessage(fmt.Sprintf("save failed at %s: %v", p, err), true)
			return
		}
		m.saved[string(p)] = chord
	}

	m.refresh()
	if m.connected {
		m.setMessage(fmt.Sprintf("saved %d binding(s); daemon updated", len(changed)), false)
	} else {
		m.setMessage(fmt.Sprintf("saved %d binding(s)", len(changed)), false)
	}
}

func (m *model) refresh() {
	idx := m.list.Index()
	m.list.SetItems(buildItems(m.bindings, m.saved))
	m.list.Select(idx)
}

func (m *model) setMessage(msg string, isError bool) {
	m.message = msg
	m.isError = isError
}

func (m model) dirty() int {
	return len(changedPositions(m.bindings, m.saved))
}

// contentHeight returns the height available for the list.
func (m model) contentHeight() int {
	// status bar, message line, help bar, and the edit prompt when shown
	h := m.height - 3
	if m.editing {
		h -= 3
	}
	return max(h, 1)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.source, m.dirty(), m.width)
	helpBar := renderHelpBar(m.editing, m.width)

	var content string
	switch {
	case m.confirm != nil:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(m.contentHeight()).
			Padding(1, 2).
			Render(m.confirm.View())
	case m.editing:
		item, _ := m.list.SelectedItem().(bindingItem)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render(fmt.Sprintf("Chord for %s:", item.pos)) + "\n" +
			m.input.View()
		m.list.SetSize(m.width, m.contentHeight())
		content = lipgloss.NewStyle().Padding(0, 1).Render(prompt) + "\n" + m.list.View()
	default:
		content = m.list.View()
	}

	message := m.message
	if m.isError {
		message = errorStyle.Render(message)
	}
	messageLine := lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(message)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		messageLine,
		helpBar,
	)
}
