// internal/tui/progress.go

// Package tui renders live progress for an evaluation run as a Bubble Tea
// program fed by the runner's progress events.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/biasprobe/internal/runner"
)

var (
	headerStyle = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	caseStyle   = lipgloss.NewStyle().Bold(true)
	biasStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
)

// eventMsg wraps one runner progress event for the update loop.
type eventMsg runner.ProgressEvent

// streamClosedMsg signals that the runner closed the event channel.
type streamClosedMsg struct{}

// caseState tracks the last known progress of one test case.
type caseState struct {
	bias      string
	iteration int
	max       int
	done      bool
	failed    bool
}

// Model is the Bubble Tea model for the run progress view.
type Model struct {
	events <-chan runner.ProgressEvent

	provider string
	model    string

	spinner spinner.Model
	bar     progress.Model

	order     []string
	cases     map[string]*caseState
	caseCount int
	casesDone int
	failures  int
	finished  bool
	width     int
}

// New returns a progress view that consumes the given event stream.
func New(provider, model string, events <-chan runner.ProgressEvent) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		events:   events,
		provider: provider,
		model:    model,
		spinner:  s,
		bar:      progress.New(progress.WithDefaultGradient()),
		cases:    make(map[string]*caseState),
	}
}

// waitForEvent blocks on the runner's channel and converts the next event
// into a Bubble Tea message.
func waitForEvent(events <-chan runner.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Init starts the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update is the central update function for the progress view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		return m, nil

	case eventMsg:
		m.apply(runner.ProgressEvent(msg))
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// apply folds one runner event into the view state.
func (m *Model) apply(ev runner.ProgressEvent) {
	m.caseCount = ev.CaseCount

	state, ok := m.cases[ev.TestCaseID]
	if !ok {
		state = &caseState{bias: string(ev.Bias)}
		m.cases[ev.TestCaseID] = state
		m.order = append(m.order, ev.TestCaseID)
	}
	state.iteration = ev.Iteration
	state.max = ev.MaxIterations

	if ev.CaseDone && !state.done {
		state.done = true
		m.casesDone++
		if ev.Err != nil {
			state.failed = true
			m.failures++
		}
	}
}

// percent reports overall run completion across all test cases.
func (m Model) percent() float64 {
	if m.caseCount == 0 {
		return 0
	}
	total := float64(m.casesDone)
	for _, state := range m.cases {
		if !state.done && state.max > 0 {
			total += float64(state.iteration) / float64(state.max)
		}
	}
	return total / float64(m.caseCount)
}

// View renders the progress screen.
func (m Model) View() string {
	var b strings.Builder

	header := headerStyle.Render(fmt.Sprintf("Evaluating %s on %s", m.model, m.provider))
	b.WriteString(header + "\n\n")
	b.WriteString("  " + m.bar.ViewAs(m.percent()) + "\n\n")

	for _, id := range m.order {
		state := m.cases[id]
		label := fmt.Sprintf("%s %s", caseStyle.Render(id), biasStyle.Render("["+state.bias+"]"))
		switch {
		case state.failed:
			b.WriteString(fmt.Sprintf("  %s %s\n", label, failStyle.Render("failed")))
		case state.done:
			b.WriteString(fmt.Sprintf("  %s %s (%d iterations)\n", label, doneStyle.Render("done"), state.iteration))
		default:
			b.WriteString(fmt.Sprintf("  %s %s iteration %d/%d\n", label, m.spinner.View(), state.iteration, state.max))
		}
	}

	if m.finished {
		b.WriteString(fmt.Sprintf("\n  %d/%d test cases complete, %d failed\n", m.casesDone, m.caseCount, m.failures))
	}
	return b.String()
}

// Run drives the progress view until the event channel closes. The caller
// owns the channel and must close it when the run finishes.
func Run(provider, model string, events <-chan runner.ProgressEvent) error {
	p := tea.NewProgram(New(provider, model, events))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running progress view: %w", err)
	}
	return nil
}
