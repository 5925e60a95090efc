package styles

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a yes/no confirmation dialog. It quits the program
// once answered, so it can run standalone.
type ConfirmModel struct {
	Message   string
	Yes       bool // Current selection
	Confirmed bool // User pressed enter
	Canceled  bool // User pressed escape
	keys      ConfirmKeyMap
	theme     *Theme
}

// ConfirmKeyMap defines keybindings for the confirm dialog.
type ConfirmKeyMap struct {
	Yes     key.Binding
	No      key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeyMap returns the default keybindings.
func DefaultConfirmKeyMap() ConfirmKeyMap {
	return ConfirmKeyMap{
		Yes:     key.NewBinding(key.WithKeys("y", "right", "l"), key.WithHelp("y/→", "yes")),
		No:      key.NewBinding(key.WithKeys("n", "left", "h"), key.WithHelp("n/←", "no")),
		Toggle:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
	}
}

// NewConfirm creates a confirmation dialog defaulting to "No".
func NewConfirm(theme *Theme, message string) ConfirmModel {
	return ConfirmModel{
		Message: message,
		keys:    DefaultConfirmKeyMap(),
		theme:   theme,
	}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.Yes = true
	case key.Matches(keyMsg, m.keys.No):
		m.Yes = false
	case key.Matches(keyMsg, m.keys.Toggle):
		m.Yes = !m.Yes
	case key.Matches(keyMsg, m.keys.Confirm):
		m.Confirmed = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.Canceled = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.Done() {
		return ""
	}
	t := m.theme

	yesStyle, noStyle := t.InactiveButton, t.ActiveButton
	if m.Yes {
		yesStyle, noStyle = t.ActiveButton, t.InactiveButton
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		noStyle.Render("No"), "  ", yesStyle.Render("Yes"))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		t.Title.Render(m.Message),
		"",
		buttons,
		"",
		t.Subtle.Render("y/n to select • enter to confirm • esc to cancel"),
	)
	return t.Box.Render(content)
}

// Done returns true if the dialog is complete.
func (m ConfirmModel) Done() bool {
	return m.Confirmed || m.Canceled
}

// Result returns true if the user confirmed "Yes".
func (m ConfirmModel) Result() bool {
	return m.Confirmed && m.Yes
}
