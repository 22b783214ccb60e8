package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a value in [0, 1].
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	// Marker, when in [0, 1], draws a tick at that position (e.g. the
	// decision threshold).
	Marker float64
}

// NewProgressBar creates a new progress bar without a marker.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
		Marker:      -1,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 8 // "  0.000"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	filled = max(0, min(filled, barWidth))

	marker := -1
	if p.Marker >= 0 && p.Marker <= 1 {
		marker = min(int(float64(barWidth)*p.Marker), barWidth-1)
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		style := theme.ProgressEmpty
		if i < filled {
			style = theme.ProgressFilled
		}
		cell := " "
		if i == marker {
			cell = "│"
			style = style.Foreground(theme.Highlight)
		}
		bar.WriteString(style.Render(cell))
	}
	result += bar.String()

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %.3f", p.Percent))
	}

	return result
}
