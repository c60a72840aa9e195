package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrCancelled indicates the user aborted a prompt.
	ErrCancelled = errors.New("ui: cancelled")

	// ErrHeadlessNoConfirm indicates a confirmation was needed without a
	// terminal and without --yes.
	ErrHeadlessNoConfirm = errors.New("ui: confirmation required, rerun with --yes")
)

// Confirmer asks yes/no questions.
type Confirmer interface {
	Confirm(title, description string) (bool, error)
}

type confirmer struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewConfirmer creates a Confirmer backed by huh.
func NewConfirmer(theme *Theme, hm *HeadlessManager) Confirmer {
	return &confirmer{theme: theme, headless: hm}
}

// Confirm returns true without prompting when --yes was given. Headless
// sessions without --yes fail with ErrHeadlessNoConfirm.
func (c *confirmer) Confirm(title, description string) (bool, error) {
	if c.headless.AssumesYes() {
		return true, nil
	}
	if c.headless.IsHeadless() {
		return false, ErrHeadlessNoConfirm
	}

	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	form := huh.NewForm(huh.NewGroup(field)).WithTheme(c.huhTheme())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCancelled
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

func (c *confirmer) huhTheme() *huh.Theme {
	t := huh.ThemeBase()
	if c.theme.NoColor {
		return t
	}
	primary := lipgloss.Color(c.theme.Colors.Primary)
	muted := lipgloss.Color(c.theme.Colors.Muted)
	t.Focused.Title = t.Focused.Title.Foreground(primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(muted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(primary)
	return t
}
