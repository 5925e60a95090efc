package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/permstore/internal/domain/entity"
)

// NewStyledTable creates a themed table model.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.Text).
		Background(theme.SurfaceVariant).
		Bold(true)
	s.Cell = s.Cell.
		Foreground(theme.Text)

	t.SetStyles(s)
	return t
}

// PermissionTableColumns returns columns for the stored permission table.
func PermissionTableColumns() []table.Column {
	return []table.Column{
		{Title: "Origin", Width: 40},
		{Title: "Kind", Width: 22},
		{Title: "State", Width: 24},
		{Title: "Expires", Width: 16},
	}
}

// PermissionTableHeaders returns the column titles of PermissionTableColumns.
func PermissionTableHeaders() []string {
	columns := PermissionTableColumns()
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Title
	}
	return headers
}

// PermissionRow converts a stored record to a table row.
func PermissionRow(r *entity.PermissionRecord, now time.Time) table.Row {
	return table.Row{r.Origin, string(r.Kind), r.State.String(), DescribeExpiry(r, now)}
}
