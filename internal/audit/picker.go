package audit

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/amishk599/avradar/internal/pipeline"
)

var (
	pickerTitle    = headingText.Padding(1, 0, 1, 2)
	pickerItem     = lipgloss.NewStyle().Padding(0, 0, 0, 4)
	pickerSelected = headingText.Padding(0, 0, 0, 2)
	pickerHint     = hintText.Padding(1, 0, 0, 2)
)

// PickAll is returned by RunSourcePicker when "All sources" is chosen.
const PickAll = -1

// pickQuit marks a picker closed without a choice.
const pickQuit = -2

type pickerModel struct {
	labels []string
	failed []bool
	cursor int
	chosen int
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	last := len(m.labels) - 1
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.chosen = pickQuit
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, last)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = last
	case "enter":
		m.chosen = m.cursor - 1 // row 0 is the whole cycle
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitle.Render("✈ Fetch cycle · choose a source to inspect") + "\n")

	for i, label := range m.labels {
		if m.failed[i] {
			label = failedText.Render(label)
		}
		if i == m.cursor {
			b.WriteString(pickerSelected.Render("▸ "+label) + "\n")
		} else {
			b.WriteString(pickerItem.Render(label) + "\n")
		}
	}

	b.WriteString(pickerHint.Render("↑/↓ move  enter inspect  q quit"))
	return b.String()
}

// pickerRows builds one row for the whole cycle followed by one per source.
func pickerRows(res pipeline.Result) (labels []string, failed []bool) {
	labels = append(labels, fmt.Sprintf("All sources (%s fetched, %s unique, %d ranked, took %s)",
		humanize.Comma(int64(res.Fetched)), humanize.Comma(int64(res.Unique)), len(res.Jobs), res.Duration.Round(10*time.Millisecond)))
	failed = append(failed, false)

	for _, s := range res.Sources {
		var label string
		switch {
		case !s.OK():
			label = fmt.Sprintf("%s (failed: %v)", s.Source, s.Err)
		case len(s.Failures) > 0:
			label = fmt.Sprintf("%s (%d jobs, %d failed %s)", s.Source, len(s.Jobs),
				len(s.Failures), plural(len(s.Failures), "term", "terms"))
		default:
			label = fmt.Sprintf("%s (%d jobs)", s.Source, len(s.Jobs))
		}
		labels = append(labels, label)
		failed = append(failed, !s.OK())
	}
	return labels, failed
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// RunSourcePicker shows an interactive source selector for a finished cycle.
// Returns PickAll, the index into res.Sources, or ok=false if the user quit.
func RunSourcePicker(res pipeline.Result) (choice int, ok bool, err error) {
	labels, failed := pickerRows(res)
	m := pickerModel{
		labels: labels,
		failed: failed,
		chosen: pickQuit,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return 0, false, err
	}

	final := result.(pickerModel)
	if final.chosen == pickQuit {
		return 0, false, nil
	}
	return final.chosen, true, nil
}
