package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/model"
	"github.com/abhisek/wellstat/internal/ui/theme"
)

const titleFull = `┬ ┬┌─┐┬  ┬  ┌─┐┌┬┐┌─┐┌┬┐
│││├┤ │  │  └─┐ │ ├─┤ │
└┴┘└─┘┴─┘┴─┘└─┘ ┴ ┴ ┴ ┴ `

const titleCompact = "W · E · L · L · S · T · A · T"

const subtitle = "low happiness ~ screen time, sleep, stress, exercise and more"

func centered(s string, cw int) string {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(s)
}

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	if compact {
		return centered(style.Render(titleCompact), cw)
	}
	sub := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(subtitle)
	return centered(style.Render(titleFull)+"\n\n"+sub, cw)
}

// renderStatsBar shows how much data the fit used and how it went.
func renderStatsBar(s model.Summary, cw int, compact bool) string {
	rowsStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	droppedStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	aicStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)

	fit := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	status := "CONVERGED"
	if !s.Converged {
		fit = fit.Foreground(theme.Error)
		status = "NOT CONVERGED"
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s %s",
			rowsStyle.Render(fmt.Sprintf("n=%d", s.Data.Retained)),
			droppedStyle.Render(fmt.Sprintf("−%d", s.Data.Dropped)),
			aicStyle.Render(fmt.Sprintf("AIC %.1f", s.AIC)),
			fit.Render(fmt.Sprintf("%d it", s.Iterations)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s  %s",
			rowsStyle.Render(fmt.Sprintf("● %d ROWS", s.Data.Retained)),
			droppedStyle.Render(fmt.Sprintf("▼ %d DROPPED", s.Data.Dropped)),
			aicStyle.Render(fmt.Sprintf("AIC %.1f", s.AIC)),
			fit.Render(fmt.Sprintf("%s (%d)", status, s.Iterations)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}
