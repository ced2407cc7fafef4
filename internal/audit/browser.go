package audit

import (
	"cmp"
	"fmt"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/avradar/internal/model"
	"github.com/amishk599/avradar/internal/notifier"
	"github.com/amishk599/avradar/internal/pipeline"
	"github.com/amishk599/avradar/internal/rank"
)

// rowHeight is the number of lines a job takes in a pane: title, meta line
// and a blank separator.
const rowHeight = 3

// Explainer scores jobs and breaks a score down into rule hits.
type Explainer interface {
	Apply(jobs []model.Job) []model.Job
	Explain(job model.Job) []rank.Hit
}

// jobPane is one scrollable job list with its own cursor.
type jobPane struct {
	title  string
	jobs   []model.Job
	cursor int
	vp     viewport.Model
}

func (p *jobPane) move(delta int) {
	if len(p.jobs) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.jobs)-1)
}

func (p *jobPane) selected() (model.Job, bool) {
	if len(p.jobs) == 0 {
		return model.Job{}, false
	}
	return p.jobs[p.cursor], true
}

// refresh redraws the pane and scrolls the cursor row into view.
func (p *jobPane) refresh(focused bool) {
	p.vp.SetContent(renderJobList(p.jobs, p.cursor, focused))

	top := p.cursor * rowHeight
	bottom := top + rowHeight - 2
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

// browserModel shows the fetched records of one scope next to the digest
// entries that survived dedup and truncation.
type browserModel struct {
	panes     [2]jobPane // 0: fetched, 1: ranked digest
	focus     int
	explainer Explainer
	width     int
	height    int
	ready     bool

	showDetail bool
	detailJob  model.Job
	detailVP   viewport.Model

	wantQuit bool
}

func newBrowser(res pipeline.Result, explainer Explainer, sourceIndex int) browserModel {
	scope, fetched, ranked := buildPanes(res, explainer, sourceIndex)
	return browserModel{
		panes: [2]jobPane{
			{title: scope + " · Fetched", jobs: fetched},
			{title: "Ranked Digest", jobs: ranked},
		},
		explainer: explainer,
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.showDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browserModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pane := &m.panes[m.focus]

	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		return m, tea.Quit
	case "tab", "left", "right", "h", "l":
		m.focus = 1 - m.focus
	case "up", "k":
		pane.move(-1)
	case "down", "j":
		pane.move(1)
	case "g", "home":
		pane.move(-len(pane.jobs))
	case "G", "end":
		pane.move(len(pane.jobs))
	case "enter":
		if j, ok := pane.selected(); ok {
			m.openDetail(j)
		}
		return m, nil
	case "o":
		if j, ok := pane.selected(); ok && j.URL != "" {
			openURL(j.URL)
		}
		return m, nil
	default:
		// pgup/pgdn scroll the focused pane without moving the cursor.
		var cmd tea.Cmd
		pane.vp, cmd = pane.vp.Update(msg)
		return m, cmd
	}

	m.refresh()
	return m, nil
}

func (m browserModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pane := &m.panes[m.focus]

	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.showDetail = false
		m.refresh()
		return m, nil
	case "o":
		if m.detailJob.URL != "" {
			openURL(m.detailJob.URL)
		}
		return m, nil
	case "n", "p":
		if msg.String() == "n" {
			pane.move(1)
		} else {
			pane.move(-1)
		}
		if j, ok := pane.selected(); ok {
			m.openDetail(j)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailVP, cmd = m.detailVP.Update(msg)
	return m, cmd
}

func (m *browserModel) openDetail(j model.Job) {
	m.showDetail = true
	m.detailJob = j
	m.detailVP = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailVP.SetContent(m.renderDetail())
}

func (m *browserModel) resize(width, height int) {
	m.width, m.height = width, height

	// Two bordered panes and a one-column gutter; header and status bar
	// take a line each on top of the borders.
	paneWidth := max((width-5)/2, 20)
	paneHeight := max(height-4, 5)
	for i := range m.panes {
		if !m.ready {
			m.panes[i].vp = viewport.New(paneWidth, paneHeight)
			continue
		}
		m.panes[i].vp.Width = paneWidth
		m.panes[i].vp.Height = paneHeight
	}
	m.ready = true

	if m.showDetail {
		m.detailVP.Width = max(width-4, 20)
		m.detailVP.Height = max(height-4, 5)
		m.detailVP.SetContent(m.renderDetail())
	}
	m.refresh()
}

func (m *browserModel) refresh() {
	for i := range m.panes {
		m.panes[i].refresh(i == m.focus)
	}
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showDetail {
		return m.detailView()
	}
	return m.listView()
}

func (m browserModel) listView() string {
	width := m.panes[0].vp.Width

	var heads, bodies []string
	for i, p := range m.panes {
		frame, title := blurredFrame, paneTitle.Foreground(colorMuted)
		if i == m.focus {
			frame, title = focusedFrame, paneTitle.Foreground(colorAccent)
		}
		head := title.Render(fmt.Sprintf("%s (%d)", p.title, len(p.jobs)))
		heads = append(heads, lipgloss.NewStyle().Width(width+2).Render(head))
		bodies = append(bodies, frame.Width(width).Render(p.vp.View()))
	}

	fetched, ranked := len(m.panes[0].jobs), len(m.panes[1].jobs)
	status := fmt.Sprintf("%d fetched · %d in digest · %d deduped or cut    tab switch  ↑/↓ move  enter detail  o open  esc back  q quit",
		fetched, ranked, max(fetched-ranked, 0))

	return lipgloss.JoinHorizontal(lipgloss.Top, heads[0], " ", heads[1]) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, bodies[0], " ", bodies[1]) + "\n" +
		statusBar.Width(m.width).Render(status)
}

func (m browserModel) detailView() string {
	pane := m.panes[m.focus]
	heading := headingText.Render(fmt.Sprintf("%s · %d of %d", pane.title, pane.cursor+1, len(pane.jobs)))
	body := focusedFrame.Width(max(m.width-2, 20)).Render(m.detailVP.View())

	status := "n/p next/prev  ↑/↓ scroll  esc back  q quit"
	if m.detailJob.URL != "" {
		status = "o open URL  " + status
	}
	return heading + "\n" + body + "\n" + statusBar.Width(m.width).Render(status)
}

func (m browserModel) renderDetail() string {
	j := m.detailJob
	var b strings.Builder

	field := func(label, value string) {
		if value != "" {
			b.WriteString(fieldLabel.Render(label) + value + "\n")
		}
	}
	section := func(label string) {
		fill := strings.Repeat("─", max(m.width-12-len(label), 3))
		b.WriteString("\n" + sectionRule.Render("── "+label+" "+fill) + "\n\n")
	}

	field("Title", j.Title)
	field("Company", j.Company)
	field("Location", j.Location)
	field("Source", j.Source)
	field("Salary", j.Salary)
	field("Experience", j.Snippet)
	field("Level", notifier.ExperienceBadge(j.Snippet))

	section("Score")
	b.WriteString(renderBreakdown(j.Score, m.explainer.Explain(j)))

	if skills := notifier.SkillsFor(j.Title); len(skills) > 0 {
		section("ATM Skills")
		for _, s := range skills {
			b.WriteString("  • " + s + "\n")
		}
	}

	b.WriteByte('\n')
	field("Job URL", j.URL)
	return b.String()
}

// renderBreakdown lists every rule hit and the total.
func renderBreakdown(total int, hits []rank.Hit) string {
	var b strings.Builder
	if len(hits) == 0 {
		b.WriteString("  no scoring keywords matched\n")
	}
	for _, h := range hits {
		st := pointsUp
		if h.Points < 0 {
			st = pointsDown
		}
		fmt.Fprintf(&b, "  %s  %-13s %q\n", st.Render(fmt.Sprintf("%+3d", h.Points)), h.Rule, h.Keyword)
	}
	fmt.Fprintf(&b, "  %s  total\n", rowTitle.Render(fmt.Sprintf("%+3d", total)))
	return b.String()
}

func renderJobList(jobs []model.Job, cursor int, focused bool) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}

	rows := make([]string, 0, len(jobs))
	for i, j := range jobs {
		title, meta, marker := rowTitle, rowMeta, "  "
		if focused && i == cursor {
			title, meta, marker = rowTitleActive, rowMetaActive, "▸ "
		}
		company := cmp.Or(j.Company, "n/a")
		rows = append(rows,
			marker+title.Render(j.Title)+"\n"+
				marker+meta.Render(fmt.Sprintf("%+d · %s · %s", j.Score, company, j.Source)))
	}
	return strings.Join(rows, "\n\n")
}

// buildPanes splits one cycle into the fetched side (every record of the
// chosen scope, scored, best first) and the ranked side (the final digest
// entries that came from that scope). sourceIndex is PickAll or an index
// into res.Sources.
func buildPanes(res pipeline.Result, explainer Explainer, sourceIndex int) (scope string, fetched, ranked []model.Job) {
	if sourceIndex == PickAll {
		scope = "All sources"
		fetched = explainer.Apply(pipeline.Flatten(res.Sources))
	} else {
		src := res.Sources[sourceIndex]
		scope = src.Source
		fetched = explainer.Apply(src.Jobs)
	}
	slices.SortStableFunc(fetched, func(a, b model.Job) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if sourceIndex == PickAll {
		return scope, fetched, res.Jobs
	}

	type origin struct {
		source string
		key    pipeline.DedupKey
	}
	fromScope := make(map[origin]bool, len(fetched))
	for _, j := range fetched {
		fromScope[origin{j.Source, pipeline.KeyOf(j)}] = true
	}
	for _, j := range res.Jobs {
		if fromScope[origin{j.Source, pipeline.KeyOf(j)}] {
			ranked = append(ranked, j)
		}
	}
	return scope, fetched, ranked
}

// openURL hands url to the desktop's opener and does not wait for it.
func openURL(url string) {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{url}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		name, args = "xdg-open", []string{url}
	}
	_ = exec.Command(name, args...).Start()
}

// RunBrowser launches the split-pane browser over one fetch cycle.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the source picker.
func RunBrowser(res pipeline.Result, explainer Explainer, sourceIndex int) (bool, error) {
	p := tea.NewProgram(newBrowser(res, explainer, sourceIndex), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(browserModel).wantQuit, nil
}
