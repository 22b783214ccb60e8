package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wellstat/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below either bound screens switch to their compact rendering.
	compactWidth  = 100
	compactHeight = 30
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// HeaderStat is a short label/value pair shown on the right of the header.
type HeaderStat struct {
	Label string
	Value string
}

// Compact reports whether a terminal of this size should get compact views.
func Compact(width, height int) bool {
	return width < compactWidth || height < compactHeight
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small\n\nNeed %dx%d, have %dx%d",
			MinWidth, MinHeight, width, height,
		))
}

// bar draws a full-width rounded strip around one line of content.
func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderHeader puts the app name on the left, the screen title in the
// middle and the stats on the right.
func RenderHeader(title string, stats []HeaderStat, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Wellstat")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	value := lipgloss.NewStyle().Foreground(theme.Accent)
	parts := make([]string, 0, len(stats))
	for _, st := range stats {
		parts = append(parts, label.Render(st.Label+" ")+value.Render(st.Value))
	}
	right := strings.Join(parts, "   ")

	inner := max(width-4, 0)
	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(name), 1)
	rightGap := max(inner-lipgloss.Width(name)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	return bar(name+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter renders the footer with key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, key.Render(h.Key)+" "+desc.Render(h.Description))
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

// ContentHeight is what remains of height once header and footer are drawn.
func ContentHeight(header, footer string, height int) int {
	return max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}

// RenderFrame stacks header, content padded to the remaining height, and
// footer.
func RenderFrame(header, content, footer string, width, height int) string {
	body := lipgloss.NewStyle().
		Width(width).
		Height(ContentHeight(header, footer, height)).
		Render(content)
	return header + "\n" + body + "\n" + footer
}
