package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/permstore/internal/application/port"
	"github.com/bnema/permstore/internal/domain/entity"
)

// PromptChoice is one answer of the permission prompt.
type PromptChoice struct {
	Label  string
	Result port.PermissionPromptResult
}

// PromptChoices are the answers offered, left to right.
var PromptChoices = []PromptChoice{
	{Label: "Allow once", Result: port.PermissionPromptResult{Allowed: true}},
	{Label: "Always allow", Result: port.PermissionPromptResult{Allowed: true, Persistent: true}},
	{Label: "Block once", Result: port.PermissionPromptResult{Allowed: false}},
	{Label: "Never allow", Result: port.PermissionPromptResult{Allowed: false, Persistent: true}},
}

type promptKeyMap struct {
	Left        key.Binding
	Right       key.Binding
	AllowOnce   key.Binding
	AlwaysAllow key.Binding
	BlockOnce   key.Binding
	NeverAllow  key.Binding
	Confirm     key.Binding
	Dismiss     key.Binding
}

func defaultPromptKeyMap() promptKeyMap {
	return promptKeyMap{
		Left:        key.NewBinding(key.WithKeys("left", "h", "shift+tab")),
		Right:       key.NewBinding(key.WithKeys("right", "l", "tab")),
		AllowOnce:   key.NewBinding(key.WithKeys("a")),
		AlwaysAllow: key.NewBinding(key.WithKeys("A")),
		BlockOnce:   key.NewBinding(key.WithKeys("b")),
		NeverAllow:  key.NewBinding(key.WithKeys("B", "n")),
		Confirm:     key.NewBinding(key.WithKeys("enter")),
		Dismiss:     key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
	}
}

// PromptModel asks whether an origin may use a permission kind.
type PromptModel struct {
	Origin    string
	Kind      entity.PermissionKind
	Selected  int
	Answered  bool
	Dismissed bool
	keys      promptKeyMap
	theme     *Theme
}

// NewPrompt creates a permission prompt with "Allow once" preselected.
func NewPrompt(theme *Theme, origin string, kind entity.PermissionKind) PromptModel {
	return PromptModel{
		Origin: origin,
		Kind:   kind,
		keys:   defaultPromptKeyMap(),
		theme:  theme,
	}
}

// Init implements tea.Model.
func (m PromptModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		m.Selected = (m.Selected + len(PromptChoices) - 1) % len(PromptChoices)
	case key.Matches(keyMsg, m.keys.Right):
		m.Selected = (m.Selected + 1) % len(PromptChoices)
	case key.Matches(keyMsg, m.keys.AllowOnce):
		return m.answer(0)
	case key.Matches(keyMsg, m.keys.AlwaysAllow):
		return m.answer(1)
	case key.Matches(keyMsg, m.keys.BlockOnce):
		return m.answer(2)
	case key.Matches(keyMsg, m.keys.NeverAllow):
		return m.answer(3)
	case key.Matches(keyMsg, m.keys.Confirm):
		return m.answer(m.Selected)
	case key.Matches(keyMsg, m.keys.Dismiss):
		m.Dismissed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PromptModel) answer(idx int) (tea.Model, tea.Cmd) {
	m.Selected = idx
	m.Answered = true
	return m, tea.Quit
}

// Result returns the chosen answer; ok is false if the prompt was dismissed.
func (m PromptModel) Result() (result port.PermissionPromptResult, ok bool) {
	if !m.Answered {
		return port.PermissionPromptResult{}, false
	}
	return PromptChoices[m.Selected].Result, true
}

// View implements tea.Model.
func (m PromptModel) View() string {
	if m.Answered || m.Dismissed {
		return ""
	}
	t := m.theme

	buttons := make([]string, 0, len(PromptChoices)*2)
	for i, c := range PromptChoices {
		style := t.InactiveButton
		if i == m.Selected {
			style = t.ActiveButton
		}
		if i > 0 {
			buttons = append(buttons, " ")
		}
		buttons = append(buttons, style.Render(c.Label))
	}

	question := fmt.Sprintf("%s wants to use %s", t.Highlight.Render(m.Origin), t.Title.Render(describeKind(m.Kind)))
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Title.Render(IconQuestion+" Permission request"),
		"",
		question,
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, buttons...),
		"",
		t.Subtle.Render("←/→ select • enter confirm • a/A allow • b/B block • esc dismiss"),
	)
	return t.Box.Render(content)
}

var kindDescriptions = map[entity.PermissionKind]string{
	entity.PermissionKindCamera:              "your camera",
	entity.PermissionKindMicrophone:          "your microphone",
	entity.PermissionKindGeolocation:         "your location",
	entity.PermissionKindDesktopNotification: "desktop notifications",
	entity.PermissionKindScreen:              "screen sharing",
	entity.PermissionKindCookie:              "cookies",
	entity.PermissionKindImage:               "images",
	entity.PermissionKindIndexedDB:           "offline storage",
	entity.PermissionKindInstall:             "add-on installation",
	entity.PermissionKindPopup:               "pop-up windows",
}

func describeKind(kind entity.PermissionKind) string {
	if d, ok := kindDescriptions[kind]; ok {
		return d
	}
	return strings.ReplaceAll(string(kind), "-", " ")
}
