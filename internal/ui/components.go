package ui

import "strings"

var cellRamp = []rune(" ▁▂▃▄▅▆▇█")

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func renderLevelBar(level float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(clamp01(level) * float64(width))
	if filled > width {
		filled = width
	}
	return barStyle.Render(strings.Repeat("━", filled)) +
		dimBarStyle.Render(strings.Repeat("─", width-filled))
}

// renderCellRow maps one level per cell onto a block-element ramp.
func renderCellRow(levels []float64) string {
	var sb strings.Builder
	for _, level := range levels {
		idx := int(clamp01(level) * float64(len(cellRamp)-1))
		sb.WriteRune(cellRamp[idx])
	}
	return barStyle.Render(sb.String())
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
