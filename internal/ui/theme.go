// Package ui provides terminal output for mug: a lipgloss theme, spinners
// for long running external tools, confirmation prompts, markdown rendering
// of removal plans and a tree view of the project. Every component degrades
// to plain text when stdin is not a terminal or colors are disabled.
package ui

import "github.com/charmbracelet/lipgloss"

// Brand colors.
const (
	ColorPrimary   = "#00ADD8"
	ColorSecondary = "#5DC9E2"
	ColorSuccess   = "#10B981"
	ColorWarning   = "#F59E0B"
	ColorError     = "#EF4444"
	ColorMuted     = "#6B7280"
)

// Colors holds the palette of a theme.
type Colors struct {
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Muted     string
}

// Theme styles all terminal output.
type Theme struct {
	NoColor bool
	Colors  Colors
}

// NewTheme returns the default theme. With noColor set every style renders
// plain text.
func NewTheme(noColor bool) *Theme {
	return &Theme{
		NoColor: noColor,
		Colors: Colors{
			Primary:   ColorPrimary,
			Secondary: ColorSecondary,
			Success:   ColorSuccess,
			Warning:   ColorWarning,
			Error:     ColorError,
			Muted:     ColorMuted,
		},
	}
}

func (t *Theme) style(color string) lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Title renders a heading.
func (t *Theme) Title(s string) string {
	return t.style(t.Colors.Primary).Bold(!t.NoColor).Render(s)
}

// Success renders a success line.
func (t *Theme) Success(s string) string {
	return t.style(t.Colors.Success).Render("✓ " + s)
}

// Warning renders a warning line.
func (t *Theme) Warning(s string) string {
	return t.style(t.Colors.Warning).Render("! " + s)
}

// Error renders an error line.
func (t *Theme) Error(s string) string {
	return t.style(t.Colors.Error).Render("✗ " + s)
}

// Muted renders secondary information.
func (t *Theme) Muted(s string) string {
	return t.style(t.Colors.Muted).Render(s)
}

// Bullet renders a list item with a colored marker.
func (t *Theme) Bullet(marker, s string) string {
	return t.style(t.Colors.Secondary).Render(marker) + " " + s
}
