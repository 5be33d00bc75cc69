package tui

import (
	"github.com/charmbracelet/lipgloss"

	"lostfound-desk/internal/alert"
	"lostfound-desk/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1565C0")).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Underline(true)

	labelStyle   = lipgloss.NewStyle().Width(22).Foreground(lipgloss.Color("250"))
	focusedLabel = labelStyle.Foreground(lipgloss.Color("#42A5F5")).Bold(true)
	errorText    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF5350")).PaddingLeft(22)
	mutedText    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1976D2"))
	disabledButton = buttonStyle.Background(lipgloss.Color("238")).Foreground(lipgloss.Color("245"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#42A5F5")).
			Padding(1, 2).
			MarginTop(1)

	alertBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(1).
			MarginBottom(1)
)

var toneColors = map[model.Tone]lipgloss.Color{
	model.ToneSuccess:   lipgloss.Color("#66BB6A"),
	model.TonePrimary:   lipgloss.Color("#42A5F5"),
	model.ToneInfo:      lipgloss.Color("#29B6F6"),
	model.ToneWarning:   lipgloss.Color("#FFA726"),
	model.ToneError:     lipgloss.Color("#EF5350"),
	model.ToneSecondary: lipgloss.Color("#AB47BC"),
	model.ToneDefault:   lipgloss.Color("250"),
}

func toneStyle(t model.Tone) lipgloss.Style {
	c, ok := toneColors[t]
	if !ok {
		c = toneColors[model.ToneDefault]
	}
	return lipgloss.NewStyle().Foreground(c)
}

func severityTone(s alert.Severity) model.Tone {
	switch s {
	case alert.SeveritySuccess:
		return model.ToneSuccess
	case alert.SeverityError:
		return model.ToneError
	case alert.SeverityWarning:
		return model.ToneWarning
	default:
		return model.ToneInfo
	}
}
