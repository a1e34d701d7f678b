// internal/tui/tui.go
// Package tui renders a batch run as an inline Bubble Tea program: a spinner
// for the request in flight, a progress bar, and one printed line per saved
// transcript.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/chatgen/internal/batch"
	"github.com/mwiater/chatgen/internal/scenario"
	"github.com/mwiater/chatgen/internal/store"
)

// ErrInterrupted is returned by Run when the user quits before the batch
// finished.
var ErrInterrupted = errors.New("batch interrupted")

var (
	headerStyle = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// stepDoneMsg is sent when one iteration has been generated and written.
type stepDoneMsg struct{ rec batch.Record }

// stepErrMsg is sent when an iteration could not be written.
type stepErrMsg struct{ err error }

// model drives a batch one step at a time. The next step is only scheduled
// after the previous step's message has been handled, so iterations never
// overlap.
type model struct {
	ctx    context.Context
	cancel context.CancelFunc

	driver *batch.Driver
	store  *store.TranscriptStore
	sum    *batch.Summary
	count  int

	index     int
	current   scenario.Params
	stepStart time.Time
	done      bool
	err       error

	spinner  spinner.Model
	progress progress.Model
	width    int
}

func newModel(ctx context.Context, d *batch.Driver, st *store.TranscriptStore, sum *batch.Summary, count int) *model {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &model{
		ctx:      ctx,
		cancel:   cancel,
		driver:   d,
		store:    st,
		sum:      sum,
		count:    count,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// step returns the command for the current iteration, or nil once every
// iteration has run.
func (m *model) step() tea.Cmd {
	if m.index >= m.count {
		return nil
	}
	i := m.index
	p := m.driver.Sampler.Sample(i)
	m.current = p
	m.stepStart = time.Now()
	ctx, d, st := m.ctx, m.driver, m.store
	return func() tea.Msg {
		if err := ctx.Err(); err != nil {
			return stepErrMsg{err: err}
		}
		rec, err := d.Execute(ctx, st, i, p)
		if err != nil {
			return stepErrMsg{err: err}
		}
		return stepDoneMsg{rec: rec}
	}
}

// Init starts the spinner and the first iteration.
func (m *model) Init() tea.Cmd {
	if m.count == 0 {
		m.done = true
		return tea.Quit
	}
	return tea.Batch(m.spinner.Tick, m.step())
}

// Update handles key presses, step results and spinner ticks.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			if !m.done {
				m.err = ErrInterrupted
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 20; w > 10 && w < 60 {
			m.progress.Width = w
		}

	case stepDoneMsg:
		m.sum.Add(msg.rec)
		m.index++
		notice := tea.Println(batch.Notice(msg.rec))
		if m.index >= m.count {
			m.done = true
			return m, tea.Sequence(notice, tea.Quit)
		}
		return m, tea.Batch(notice, m.step())

	case stepErrMsg:
		m.err = msg.err
		if errors.Is(msg.err, context.Canceled) {
			m.err = ErrInterrupted
		}
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the header, the request in flight and the progress bar.
func (m *model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("chatgen %s", m.sum.RunID)))
	b.WriteString(helpStyle.Render(" (q to stop)") + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	case m.done:
		b.WriteString(fmt.Sprintf("  Generated %d/%d transcripts into %s\n", m.index, m.count, m.store.Dir()))
	default:
		elapsed := fmt.Sprintf("%.1f", time.Since(m.stepStart).Seconds())
		b.WriteString(fmt.Sprintf("  %s Generating %d/%d: %s, %s, %s, %s (%s rules)... %ss\n",
			m.spinner.View(), m.index+1, m.count,
			m.current.Issue, m.current.Resolution, m.current.Sentiment, m.current.Tone,
			m.current.RulesTag(), elapsed))
	}

	b.WriteString("  " + m.progress.ViewAs(m.percent()) + "\n")
	return b.String()
}

func (m *model) percent() float64 {
	if m.count == 0 {
		return 1
	}
	return float64(m.index) / float64(m.count)
}

// Run executes a batch of count transcripts under a Bubble Tea program and
// returns the run summary. Quitting early cancels the request in flight and
// returns ErrInterrupted alongside the partial summary.
func Run(ctx context.Context, d *batch.Driver, count int, outputDir string, opts ...tea.ProgramOption) (*batch.Summary, error) {
	st, sum, err := d.Begin(count, outputDir)
	if err != nil {
		return nil, err
	}
	defer d.End(sum)

	m := newModel(ctx, d, st, sum, count)
	defer m.cancel()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if errors.Is(err, tea.ErrInterrupted) {
			m.cancel()
			return sum, ErrInterrupted
		}
		return sum, fmt.Errorf("run batch program: %w", err)
	}
	if fm, ok := final.(*model); ok && fm.err != nil {
		return sum, fm.err
	}
	return sum, nil
}
