// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/logging"
)

// PermissionManager is the part of the site permission use case the
// manage view drives.
type PermissionManager interface {
	All(ctx context.Context) ([]*entity.PermissionRecord, error)
	Set(ctx context.Context, origin string, kind entity.PermissionKind,
		state entity.PermissionState, scope entity.PermissionScope) error
	SetWithExpiry(ctx context.Context, origin string, kind entity.PermissionKind,
		state entity.PermissionState, expireAt time.Time) error
	Remove(ctx context.Context, origin string, kind entity.PermissionKind) error
}

// ManageModel is the interactive permission browser.
type ManageModel struct {
	// UI components
	table table.Model
	help  help.Model
	keys  manageKeyMap

	// State
	records       []*entity.PermissionRecord
	width         int
	height        int
	err           error
	statusMessage string

	// Dependencies
	ctx   context.Context
	perms PermissionManager
	theme *styles.Theme
	now   func() time.Time
}

type manageKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Allow   key.Binding
	Block   key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k manageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Allow, k.Block, k.Delete, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k manageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Allow, k.Block, k.Delete},
		{k.Refresh, k.Help, k.Quit},
	}
}

func defaultManageKeyMap() manageKeyMap {
	return manageKeyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Allow:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "allow")),
		Block:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "block")),
		Delete:  key.NewBinding(key.WithKeys("x", "d"), key.WithHelp("x", "delete")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// permissionsLoadedMsg carries a fresh listing.
type permissionsLoadedMsg struct {
	records []*entity.PermissionRecord
	err     error
}

// permissionChangedMsg reports the outcome of an edit.
type permissionChangedMsg struct {
	status string
	err    error
}

// NewManageModel creates the permission browser.
func NewManageModel(ctx context.Context, theme *styles.Theme, perms PermissionManager) ManageModel {
	return ManageModel{
		table:  styles.NewStyledTable(theme, styles.PermissionTableColumns(), nil, 104, 15),
		help:   help.New(),
		keys:   defaultManageKeyMap(),
		width:  104,
		height: 24,
		ctx:    ctx,
		perms:  perms,
		theme:  theme,
		now:    time.Now,
	}
}

// Init implements tea.Model.
func (m ManageModel) Init() tea.Cmd {
	return m.load()
}

func (m ManageModel) load() tea.Cmd {
	return func() tea.Msg {
		records, err := m.perms.All(m.ctx)
		return permissionsLoadedMsg{records: records, err: err}
	}
}

// Update implements tea.Model.
func (m ManageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-6, 3))
		return m, nil

	case permissionsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.records = msg.records
		m.table.SetRows(m.rows())
		if m.table.Cursor() >= len(m.records) {
			m.table.SetCursor(max(len(m.records)-1, 0))
		}
		return m, nil

	case permissionChangedMsg:
		m.err = msg.err
		m.statusMessage = msg.status
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ManageModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh, m.keys.Allow, m.keys.Block, m.keys.Delete):
		m.err, m.statusMessage = nil, ""
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Allow):
		return m, m.setSelected(entity.StateAllow)
	case key.Matches(msg, m.keys.Block):
		return m, m.setSelected(entity.StateBlock)
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteSelected()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ManageModel) selected() *entity.PermissionRecord {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return nil
	}
	return m.records[idx]
}

func (m ManageModel) setSelected(state entity.PermissionState) tea.Cmd {
	record := m.selected()
	if record == nil {
		return nil
	}
	origin, kind, scope := record.Origin, record.Kind, record.Scope()
	expireType, expireAt := record.ExpireType, record.ExpireTime
	return func() tea.Msg {
		var err error
		if expireType == entity.ExpireTime {
			err = m.perms.SetWithExpiry(m.ctx, origin, kind, state, expireAt)
		} else {
			err = m.perms.Set(m.ctx, origin, kind, state, scope)
		}
		if err != nil {
			logging.FromContext(m.ctx).Warn().Err(err).Str("origin", origin).Msg("manage: set failed")
			err = fmt.Errorf("cannot change %s %s: %w", origin, kind, err)
		}
		return permissionChangedMsg{status: fmt.Sprintf("%s %s set to %s", origin, kind, state), err: err}
	}
}

func (m ManageModel) deleteSelected() tea.Cmd {
	record := m.selected()
	if record == nil {
		return nil
	}
	origin, kind := record.Origin, record.Kind
	return func() tea.Msg {
		err := m.perms.Remove(m.ctx, origin, kind)
		return permissionChangedMsg{status: fmt.Sprintf("%s %s removed", origin, kind), err: err}
	}
}

func (m ManageModel) rows() []table.Row {
	now := m.now()
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, styles.PermissionRow(r, now))
	}
	return rows
}

// View implements tea.Model.
func (m ManageModel) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Title.Render(fmt.Sprintf("%s Site permissions (%d)", styles.IconDatabase, len(m.records))))
	b.WriteString("\n\n")

	if len(m.records) == 0 && m.err == nil {
		b.WriteString(t.Subtle.Render("No permissions stored."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(t.ErrorStyle.Render(styles.IconX + " " + m.err.Error()))
	case m.statusMessage != "":
		b.WriteString(t.SuccessStyle.Render(styles.IconCheck + " " + m.statusMessage))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(b.String())
}

// Records returns the currently listed records.
func (m ManageModel) Records() []*entity.PermissionRecord {
	return m.records
}
