// Package styles provides reusable lipgloss-based TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/permstore/internal/infrastructure/config"
)

// Theme holds lipgloss colors and styles derived from config.
type Theme struct {
	// Base colors (from config.ColorPalette)
	Background     lipgloss.Color
	Surface        lipgloss.Color
	SurfaceVariant lipgloss.Color
	Text           lipgloss.Color
	Muted          lipgloss.Color
	Accent         lipgloss.Color
	Border         lipgloss.Color

	// Additional semantic colors
	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color

	// Pre-built styles
	Title        lipgloss.Style
	Subtle       lipgloss.Style
	Normal       lipgloss.Style
	Highlight    lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	SuccessStyle lipgloss.Style

	// Dialog buttons
	ActiveButton   lipgloss.Style
	InactiveButton lipgloss.Style

	Badge      lipgloss.Style
	BadgeMuted lipgloss.Style

	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	Box lipgloss.Style
}

// NewTheme creates a Theme from config, falling back to the default palette.
func NewTheme(cfg *config.Config) *Theme {
	p := config.DefaultDarkPalette()
	if cfg != nil && cfg.Appearance.Palette.Background != "" {
		p = cfg.Appearance.Palette
	}
	return NewThemeFromPalette(p)
}

// NewThemeFromPalette creates a Theme from a ColorPalette.
func NewThemeFromPalette(p config.ColorPalette) *Theme {
	t := &Theme{
		Background:     lipgloss.Color(p.Background),
		Surface:        lipgloss.Color(p.Surface),
		SurfaceVariant: lipgloss.Color(p.SurfaceVariant),
		Text:           lipgloss.Color(p.Text),
		Muted:          lipgloss.Color(p.Muted),
		Accent:         lipgloss.Color(p.Accent),
		Border:         lipgloss.Color(p.Border),

		Error:   lipgloss.Color("#ef4444"),
		Warning: lipgloss.Color("#f59e0b"),
		Success: lipgloss.Color(p.Accent),
	}
	t.buildStyles()
	return t
}

func (t *Theme) buildStyles() {
	t.Title = lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	t.Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	t.Normal = lipgloss.NewStyle().Foreground(t.Text)
	t.Highlight = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	t.WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	t.SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)

	t.ActiveButton = lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Padding(0, 2).
		Bold(true)

	t.InactiveButton = lipgloss.NewStyle().
		Foreground(t.Muted).
		Background(t.Surface).
		Padding(0, 2)

	t.Badge = lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Padding(0, 1)

	t.BadgeMuted = lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.SurfaceVariant).
		Padding(0, 1)

	t.HelpKey = lipgloss.NewStyle().Foreground(t.Accent)
	t.HelpDesc = lipgloss.NewStyle().Foreground(t.Muted)

	t.Box = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 2)
}
