package script

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#58FFE0")).Bold(true)
	twinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	stageOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0B0D17")).Background(lipgloss.Color("#58FFE0")).Padding(0, 1)
	stageOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Padding(0, 1)
)

// Format renders one chat line: the speaker on the first row, the wrapped
// text indented under it. width <= 0 disables wrapping.
func Format(l Line, width int) string {
	var speaker lipgloss.Style
	switch l.Speaker {
	case SpeakerUser:
		speaker = userStyle
	case SpeakerTwin:
		speaker = twinStyle
	default:
		speaker = systemStyle
	}
	text := textStyle
	if width > 2 {
		text = text.Width(width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, speaker.Render(l.Speaker), text.Render(l.Text))
}

// FormatTitle renders a script heading.
func FormatTitle(s Script) string {
	return titleStyle.Render(s.Title)
}

// FormatStages renders the stage indicator with active highlighted.
func FormatStages(stages []string, active int) string {
	parts := make([]string, len(stages))
	for i, label := range stages {
		if i == active {
			parts[i] = stageOn.Render(label)
		} else {
			parts[i] = stageOff.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
