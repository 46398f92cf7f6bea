package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/ui/styles"
)

// SpendPercent returns spent as a percentage of limit, or -1 when no limit
// is set.
func SpendPercent(spentCents, limitCents int64) float64 {
	if limitCents <= 0 {
		return -1
	}
	return float64(spentCents) / float64(limitCents) * 100
}

// SpendBar renders spend against a hard limit as a gradient bar with the
// percentage on the right. Members without a limit get a dimmed bar.
func SpendBar(percent float64, width int) string {
	barWidth := width - 8
	if barWidth < 5 {
		barWidth = 5
	}

	if percent < 0 {
		bar := styles.SpendNoLimitStyle.Render(strings.Repeat("░", barWidth))
		return fmt.Sprintf("[%s] %s", bar, styles.SpendNoLimitStyle.Width(5).Align(lipgloss.Right).Render("n/a"))
	}

	percentStr := styles.GetSpendStyle(percent).
		Width(5).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("[%s] %s", RenderGradientBar(percent, barWidth), percentStr)
}

// RenderGradientBar renders just the bar part, green to red as it fills.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = max(0, min(filled, width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}

	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
