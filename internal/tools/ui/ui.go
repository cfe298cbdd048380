package ui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	spinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var spinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg struct{}

type doneMsg struct{ err error }

type model struct {
	title string
	frame int
	done  bool
	err   error
	work  func() error
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), func() tea.Msg {
		return doneMsg{err: m.work()}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.frame = (m.frame + 1) % len(spinFrames)
		return m, tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.err != nil {
			return errStyle.Render("✗ "+m.title) + "\n"
		}
		return okStyle.Render("✓ "+m.title) + "\n"
	}
	return fmt.Sprintf("%s %s\n", spinStyle.Render(spinFrames[m.frame]), titleStyle.Render(m.title))
}

// Run shows a spinner while work executes. In non-TTY environments the
// spinner is skipped and work runs directly.
func Run(title string, work func() error) error {
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return work()
	}
	final, err := tea.NewProgram(model{title: title, work: work}).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok {
		return fm.err
	}
	return nil
}
