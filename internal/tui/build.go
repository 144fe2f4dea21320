package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/jotdown/internal/styles"
)

// BuildResult holds the result of a build run
type BuildResult struct {
	FilesProcessed int
	Skipped        int
	Errors         []error
	Duration       time.Duration
}

// BuildMsg is sent when the build completes
type BuildMsg struct {
	Result *BuildResult
	Err    error
}

// buildModel is the Bubble Tea model for the build progress display
type buildModel struct {
	spinner  spinner.Model
	status   string
	complete bool
	result   *BuildResult
	err      error
}

// InitBuildModel creates a new build progress model
func InitBuildModel(status string) tea.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return buildModel{
		spinner: s,
		status:  status,
	}
}

func (m buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case BuildMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m buildModel) View() string {
	if !m.complete {
		return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
	}

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Build failed: "+m.err.Error()) + "\n"
	}

	took := styles.HelpStyle.Render(fmt.Sprintf("Completed in %v", m.result.Duration.Round(time.Millisecond))) + "\n"

	if m.result.FilesProcessed == 0 && len(m.result.Errors) == 0 {
		return styles.SuccessStyle.Render(fmt.Sprintf("✓ Nothing to convert (%d unchanged)", m.result.Skipped)) + "\n" + took
	}

	msg := styles.SuccessStyle.Render(fmt.Sprintf("✓ Converted %d file(s)", m.result.FilesProcessed))
	if len(m.result.Errors) > 0 {
		msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(m.result.Errors)))
		for _, err := range m.result.Errors {
			msg += "\n  " + styles.DimStyle.Render(err.Error())
		}
	}
	return msg + "\n" + took
}
