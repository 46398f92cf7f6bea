// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/team-usage-dashboard/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// asciigraph needs two points to draw a line
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	// Find max value for scaling
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	barWidth := width - maxLabelLen - 10 // Leave room for label and value
	if barWidth < 10 {
		barWidth = 10
	}

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := int((v / maxVal) * float64(barWidth))
		if barLen < 0 {
			barLen = 0
		}

		lines = append(lines, fmt.Sprintf("%-*s │%s %.1f", maxLabelLen, label, strings.Repeat("█", barLen), v))
	}

	return strings.Join(lines, "\n")
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws values as one block per cell, scaled to the largest
// value. When there are more values than cells, each cell shows the peak of
// its slice so short bursts stay visible.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	cells := min(width, len(values))
	peaks := make([]float64, cells)
	top := 0.0
	for i := 0; i < cells; i++ {
		lo, hi := i*len(values)/cells, (i+1)*len(values)/cells
		peaks[i] = slices.Max(values[lo:hi])
		top = max(top, peaks[i])
	}
	if top <= 0 {
		top = 1
	}

	var b strings.Builder
	last := len(sparkBlocks) - 1
	for _, p := range peaks {
		level := int(p / top * float64(last))
		b.WriteRune(sparkBlocks[max(0, min(level, last))])
	}
	return b.String()
}
