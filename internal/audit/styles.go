package audit

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent = lipgloss.Color("214") // runway amber
	colorMuted  = lipgloss.Color("243")
	colorBright = lipgloss.Color("230")
	colorBar    = lipgloss.Color("237")
	colorSelect = lipgloss.Color("58")
	colorGood   = lipgloss.Color("78")
	colorBad    = lipgloss.Color("203")
)

var (
	focusedFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent)
	blurredFrame = focusedFrame.BorderForeground(colorMuted)

	paneTitle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	headingText = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	hintText    = lipgloss.NewStyle().Foreground(colorMuted)
	failedText  = lipgloss.NewStyle().Foreground(colorBad)

	statusBar = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(colorBright).
			Background(colorBar)

	rowTitle       = lipgloss.NewStyle().Bold(true)
	rowMeta        = lipgloss.NewStyle().Foreground(colorMuted)
	rowTitleActive = rowTitle.Foreground(colorBright).Background(colorSelect)
	rowMetaActive  = lipgloss.NewStyle().Foreground(colorBright).Background(colorSelect)

	fieldLabel  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Width(12)
	sectionRule = lipgloss.NewStyle().Foreground(colorMuted)
	pointsUp    = lipgloss.NewStyle().Foreground(colorGood)
	pointsDown  = lipgloss.NewStyle().Foreground(colorBad)
)
