package report

import "fmt"

// formatPercent returns a percentage string for report output.
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// formatLevel renders a perturbation level without trailing zeros.
func formatLevel(level float64) string {
	return fmt.Sprintf("%g", level)
}
