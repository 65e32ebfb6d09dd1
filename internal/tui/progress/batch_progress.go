package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/tui/theme"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunFunc starts a batch and reports every finished item through onResult.
type RunFunc func(ctx context.Context, onResult func(batch.Result, batch.Progress)) (batch.Summary, error)

// recentLimit caps the list of recently finished items shown under the bar.
const recentLimit = 5

// BatchProgressModel is a full-screen Bubble Tea model shown while a batch
// runs. Once it quits the caller reads the summary from it.
type BatchProgressModel struct {
	title string
	run   RunFunc

	ctx    context.Context
	cancel context.CancelFunc

	// counters, only touched from Update
	snapshot batch.Progress
	recent   []batch.Result
	stopping bool

	// result
	summary batch.Summary
	err     error
	done    bool

	width    int
	height   int
	progress progress.Model
	msgCh    chan tea.Msg
	theme    theme.Theme
}

// itemDoneMsg reports one finished item.
type itemDoneMsg struct {
	result   batch.Result
	snapshot batch.Progress
}

// batchDoneMsg carries the final summary.
type batchDoneMsg struct {
	summary batch.Summary
	err     error
}

// NewBatchProgressModel creates a model that runs run once Init is called.
func NewBatchProgressModel(ctx context.Context, title string, run RunFunc, th theme.Theme) *BatchProgressModel {
	gradient := th.ProgressGradient()
	p := progress.New(progress.WithGradient(gradient[0], gradient[1]))
	p.Width = 50
	ctx, cancel := context.WithCancel(ctx)
	return &BatchProgressModel{
		title:    title,
		run:      run,
		ctx:      ctx,
		cancel:   cancel,
		width:    80,
		height:   12,
		progress: p,
		msgCh:    make(chan tea.Msg, 64),
		theme:    th,
	}
}

// Init starts the batch in the background.
func (m *BatchProgressModel) Init() tea.Cmd {
	go m.runAsync()
	return m.waitForMsg()
}

func (m *BatchProgressModel) waitForMsg() tea.Cmd { return func() tea.Msg { return <-m.msgCh } }

func (m *BatchProgressModel) runAsync() {
	summary, err := m.run(m.ctx, func(res batch.Result, p batch.Progress) {
		m.msgCh <- itemDoneMsg{result: res, snapshot: p}
	})
	m.msgCh <- batchDoneMsg{summary: summary, err: err}
}

// Update processes Bubble Tea messages.
func (m *BatchProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" || msg.String() == "q" {
			// Running items finish; the batch reports back once they have.
			m.stopping = true
			m.cancel()
		}
		return m, nil
	case itemDoneMsg:
		if msg.snapshot.Done >= m.snapshot.Done {
			m.snapshot = msg.snapshot
		}
		m.recent = append(m.recent, msg.result)
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
		var cmd tea.Cmd
		if m.snapshot.Total > 0 {
			cmd = m.progress.SetPercent(float64(m.snapshot.Done) / float64(m.snapshot.Total))
		}
		return m, tea.Batch(cmd, m.waitForMsg())
	case batchDoneMsg:
		m.summary, m.err, m.done = msg.summary, msg.err, true
		m.cancel()
		return m, tea.Quit
	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// View renders the progress UI.
func (m *BatchProgressModel) View() string {
	s := m.snapshot
	percent := 0
	if s.Total > 0 {
		percent = 100 * s.Done / s.Total
	}

	stats := []string{
		fmt.Sprintf("%s Items: %d", m.theme.Icon("stats"), s.Total),
		fmt.Sprintf("Processed: %d", s.Done),
		fmt.Sprintf("Failed: %d", s.Failed),
		fmt.Sprintf("Progress: %d%%", percent),
	}

	var recent []string
	for _, res := range m.recent {
		line := m.theme.OutcomeIcon(res.Outcome, !res.Succeeded()) + " " + filepath.Base(res.Path)
		if !res.Succeeded() {
			line = m.theme.FailureStyle().Render(line)
		}
		recent = append(recent, line)
	}

	panel := m.theme.PanelStyle()
	panelWidth := max(m.width-panel.GetHorizontalFrameSize(), 0)
	sections := []string{
		m.theme.HeaderStyle().Width(m.width).Render(m.title),
		m.progress.View(),
		panel.Width(panelWidth).Render(strings.Join(stats, "\n")),
	}
	if len(recent) > 0 {
		sections = append(sections, strings.Join(recent, "\n"))
	}

	status := "Processing... press q to stop"
	switch {
	case m.done:
		status = "Done"
	case m.stopping:
		status = "Stopping after running items finish..."
	}
	sections = append(sections, m.theme.StatusBarStyle().Width(m.width).Render(status))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Summary returns the batch summary once the model has quit.
func (m *BatchProgressModel) Summary() batch.Summary { return m.summary }

// Err returns the error reported by the batch.
func (m *BatchProgressModel) Err() error { return m.err }

// Done reports whether the batch returned before the model quit.
func (m *BatchProgressModel) Done() bool { return m.done }
