package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/secondary text color
	Alert   lipgloss.Color // Trigger highlight color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Alert:   lipgloss.Color("#ffb000"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Label   lipgloss.Style
	Trigger lipgloss.Style
	Time    lipgloss.Style
	Bar     lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Label:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Trigger: lipgloss.NewStyle().Bold(true).Foreground(t.Alert),
		Time:    lipgloss.NewStyle().Foreground(t.Dim),
		Bar:     lipgloss.NewStyle().Foreground(t.Primary),
		Dim:     lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// barWidth is the score bar width in cells.
const barWidth = 16

// ScoreBar renders a 0-255 score as a fixed-width bar.
func ScoreBar(score uint8) string {
	filled := int(score) * barWidth / 255
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// RenderEvent renders one detection event as a terminal line:
//
//	 12.3s  yes      ████████████░░░░  220  ← trigger
//
// Fresh triggers get the alert style and marker; routine decisions render
// dimmed.
func (s Styles) RenderEvent(timeMs int64, label string, score uint8, isNew bool) string {
	timeCol := s.Time.Render(fmt.Sprintf("%7s", FormatDuration(timeMs)))
	labelCol := fmt.Sprintf("%-12s", label)
	bar := s.Bar.Render(ScoreBar(score))
	scoreCol := fmt.Sprintf("%3d", score)

	if isNew {
		return fmt.Sprintf("%s  %s %s  %s  %s",
			timeCol, s.Trigger.Render(labelCol), bar, scoreCol, s.Trigger.Render("← trigger"))
	}
	return fmt.Sprintf("%s  %s %s  %s",
		timeCol, s.Dim.Render(labelCol), bar, s.Dim.Render(scoreCol))
}
