package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/avradar/internal/pipeline"
)

// ErrCancelled is returned when the user aborts the loader.
var ErrCancelled = errors.New("cancelled")

// loaderTimeout bounds one interactive fetch cycle.
const loaderTimeout = 2 * time.Minute

type cycleDoneMsg struct {
	result pipeline.Result
}

type loaderModel struct {
	sourceCount int
	run         func(ctx context.Context) pipeline.Result
	ctx         context.Context
	cancel      context.CancelFunc
	spin        spinner.Model
	started     time.Time

	result pipeline.Result
	err    error
	done   bool
}

func newLoader(ctx context.Context, cancel context.CancelFunc, sourceCount int, run func(ctx context.Context) pipeline.Result) loaderModel {
	return loaderModel{
		sourceCount: sourceCount,
		run:         run,
		ctx:         ctx,
		cancel:      cancel,
		spin:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(headingText)),
		started:     time.Now(),
	}
}

func (m loaderModel) Init() tea.Cmd {
	ctx, run := m.ctx, m.run
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		return cycleDoneMsg{result: run(ctx)}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cycleDoneMsg:
		m.result = msg.result
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			m.err = ErrCancelled
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	elapsed := time.Since(m.started).Round(time.Second)
	return fmt.Sprintf("%s Fetching jobs from %d sources... %s %s\n",
		m.spin.View(), m.sourceCount, elapsed, hintText.Render("(q to cancel)"))
}

// RunLoader shows a spinner while one fetch cycle runs. It renders inline (no alt screen).
func RunLoader(sourceCount int, run func(ctx context.Context) pipeline.Result) (pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loaderTimeout)
	defer cancel()

	p := tea.NewProgram(newLoader(ctx, cancel, sourceCount, run))
	final, err := p.Run()
	if err != nil {
		return pipeline.Result{}, err
	}
	lm := final.(loaderModel)
	return lm.result, lm.err
}
