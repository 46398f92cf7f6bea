package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/team-usage-dashboard/internal/ui/styles"
)

// LoadingSpinner tracks the request the console is waiting on: which menu
// action it is and when it started.
type LoadingSpinner struct {
	spinner spinner.Model
	label   string
	started time.Time
	style   lipgloss.Style
}

// NewSpinner creates an idle spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner: s,
		label:   label,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Start marks the beginning of a request and returns the first tick.
func (l *LoadingSpinner) Start(label string, now time.Time) tea.Cmd {
	l.label = label
	l.started = now
	return l.spinner.Tick
}

// Update handles spinner tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner frame only.
func (l LoadingSpinner) View() string {
	return l.spinner.View()
}

// ViewWithLabel renders the frame and label, plus the whole seconds spent
// waiting once the request has run for at least one.
func (l LoadingSpinner) ViewWithLabel(now time.Time) string {
	line := l.spinner.View() + " " + l.style.Render(l.label)
	if elapsed := l.Elapsed(now); elapsed >= time.Second {
		line += styles.HelpStyle.Render(fmt.Sprintf(" %ds", int(elapsed.Seconds())))
	}
	return line
}

// Elapsed is the time since Start, zero when never started.
func (l LoadingSpinner) Elapsed(now time.Time) time.Duration {
	if l.started.IsZero() || now.Before(l.started) {
		return 0
	}
	return now.Sub(l.started)
}

// Label returns the current label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// RenderSpinnerCentered renders the running request centered in the given
// area, with a reminder that only ctrl+c is accepted meanwhile.
func RenderSpinnerCentered(s *LoadingSpinner, width, height int, now time.Time) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.ViewWithLabel(now),
		styles.HelpStyle.Render("waiting for the API, ctrl+c to quit"),
	)
	return styles.CenterBoth(content, width, height)
}
