package tui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Job is the work shown behind the spinner.
type Job func(ctx context.Context) error

type jobDoneMsg struct {
	err error
}

// Progress shows a spinner while a job runs and quits when it finishes.
type Progress struct {
	label   string
	spinner spinner.Model
	job     Job
	ctx     context.Context
	cancel  context.CancelFunc

	done bool
	err  error
}

func NewProgress(ctx context.Context, label string, job Job) *Progress {
	ctx, cancel := context.WithCancel(ctx)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spinnerStyle

	return &Progress{
		label:   label,
		spinner: spin,
		job:     job,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Progress) run() tea.Msg {
	return jobDoneMsg{err: p.job(p.ctx)}
}

func (p *Progress) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.run)
}

func (p *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobDoneMsg:
		p.done = true
		p.err = msg.err
		p.cancel()
		return p, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			p.done = true
			p.err = context.Canceled
			p.cancel()
			return p, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}

	return p, nil
}

func (p *Progress) View() string {
	if p.done {
		if p.err != nil {
			return RenderError(p.err) + "\n"
		}
		return ""
	}

	return p.spinner.View() + " " + p.label + mutedStyle.Render("  (esc to cancel)") + "\n"
}

// Err is the job's outcome once the program has quit.
func (p *Progress) Err() error {
	return p.err
}

// Run shows the spinner on out until the job completes and returns the job's error.
func Run(ctx context.Context, out io.Writer, label string, job Job) error {
	p := NewProgress(ctx, label, job)

	if _, err := tea.NewProgram(p, tea.WithOutput(out), tea.WithContext(ctx)).Run(); err != nil {
		p.cancel()
		return err
	}

	return p.Err()
}
