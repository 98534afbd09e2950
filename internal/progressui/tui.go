package progressui

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer is the bubbletea dashboard `ragit build --dashboard` uses
// on an interactive terminal, trimmed from the teacher's indexing
// dashboard (internal/ui/tui.go) to the one stage ragit's build
// pipeline has: chunk-and-summarize one staged file at a time.
type TUIRenderer struct {
	mu      sync.Mutex
	program *tea.Program
	model   *buildModel
	started bool
	done    chan struct{}
}

func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("progressui: output is not a TTY")
	}
	st := defaultStyles()
	if cfg.NoColor || DetectNoColor() {
		st = noColorStyles()
	}
	return &TUIRenderer{
		model: newBuildModel(st),
		done:  make(chan struct{}),
	}, nil
}

func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	r.program = tea.NewProgram(r.model, tea.WithOutput(os.Stdout))
	r.started = true
	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
	return nil
}

func (r *TUIRenderer) Update(event FileEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(fileEventMsg(event))
	}
}

func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program == nil {
		return nil
	}
	r.program.Quit()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

type fileEventMsg FileEvent
type completeMsg CompletionStats

type buildModel struct {
	styles   styles
	spinner  spinner.Model
	bar      progress.Model
	current  FileEvent
	errors   int
	complete bool
	stats    CompletionStats
}

func newBuildModel(st styles) *buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorLime))

	bar := progress.New(progress.WithSolidFill(colorLime), progress.WithWidth(40), progress.WithoutPercentage())

	return &buildModel{styles: st, spinner: s, bar: bar}
}

func (m *buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case fileEventMsg:
		m.current = FileEvent(msg)
		if m.current.Err != nil {
			m.errors++
		}
	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *buildModel) View() string {
	if m.complete {
		line := m.styles.Success.Render(fmt.Sprintf("built %d files, %d chunks in %s",
			m.stats.Files, m.stats.Chunks, m.stats.Duration.Round(100*time.Millisecond)))
		if m.stats.Errors > 0 {
			line += " " + m.styles.Error.Render(fmt.Sprintf("(%d errors)", m.stats.Errors))
		}
		return line + "\n"
	}

	percent := 0.0
	if m.current.Total > 0 {
		percent = float64(m.current.Current) / float64(m.current.Total)
	}
	bar := m.bar.ViewAs(percent)
	pct := m.styles.Active.Render(fmt.Sprintf("%3.0f%%", percent*100))
	count := m.styles.Label.Render(fmt.Sprintf("%d/%d files", m.current.Current, m.current.Total))

	line1 := fmt.Sprintf("%s %s  %s  %s", m.spinner.View(), bar, pct, count)
	line2 := m.styles.Dim.Render(m.current.Path)
	if m.errors > 0 {
		line2 += "  " + m.styles.Error.Render(fmt.Sprintf("%d errors", m.errors))
	}
	return line1 + "\n" + line2 + "\n"
}
