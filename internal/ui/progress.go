package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows that an external tool is running.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// Progress creates spinners.
type Progress interface {
	Spinner(title string) Spinner
}

type progress struct {
	theme    *Theme
	headless *HeadlessManager
	out      io.Writer
}

// NewProgress returns a Progress drawing on stderr, leaving stdout to the
// tools being run.
func NewProgress(theme *Theme, hm *HeadlessManager) Progress {
	return newProgressTo(theme, hm, os.Stderr)
}

func newProgressTo(theme *Theme, hm *HeadlessManager, out io.Writer) *progress {
	return &progress{theme: theme, headless: hm, out: out}
}

// Spinner animates title on a terminal. Headless or colorless sessions get
// one plain line per title instead.
func (p *progress) Spinner(title string) Spinner {
	if p.headless.IsHeadless() || p.theme.NoColor {
		s := &lineSpinner{theme: p.theme, out: p.out}
		s.SetTitle(title)
		return s
	}
	return startTeaSpinner(p.theme, title, p.out)
}

// lineSpinner prints titles as log lines.
type lineSpinner struct {
	theme   *Theme
	out     io.Writer
	stopped bool
}

func (s *lineSpinner) SetTitle(title string) {
	if !s.stopped {
		_, _ = fmt.Fprintln(s.out, s.theme.Muted("... "+title))
	}
}

func (s *lineSpinner) Stop() { s.stopped = true }

type (
	retitleMsg string
	finishMsg  struct{}
)

// stepModel is the bubbletea model behind teaSpinner.
type stepModel struct {
	dots     spinner.Model
	title    string
	finished bool
}

func (m stepModel) Init() tea.Cmd { return m.dots.Tick }

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case retitleMsg:
		m.title = string(msg)
	case finishMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.dots, cmd = m.dots.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m stepModel) View() string {
	if m.finished {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.dots.View(), m.title)
}

// teaSpinner runs a stepModel in its own program. The program never reads
// stdin so external tools keep their input.
type teaSpinner struct {
	program *tea.Program
	stop    sync.Once
}

func startTeaSpinner(theme *Theme, title string, out io.Writer) *teaSpinner {
	dots := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	dots.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))

	s := &teaSpinner{
		program: tea.NewProgram(stepModel{dots: dots, title: title}, tea.WithInput(nil), tea.WithOutput(out)),
	}
	go func() { _, _ = s.program.Run() }()
	return s
}

func (s *teaSpinner) SetTitle(title string) { s.program.Send(retitleMsg(title)) }

// Stop ends the animation and waits for the program to exit.
func (s *teaSpinner) Stop() {
	s.stop.Do(func() {
		s.program.Send(finishMsg{})
		s.program.Wait()
	})
}
