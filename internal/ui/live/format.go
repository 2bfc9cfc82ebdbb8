package live

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatRange renders a worker's index range.
func formatRange(row WorkerRow) string {
	return "[" + fmtInt(row.Range.Start) + ", " + fmtInt(row.Range.End) + ")"
}

// formatRowElapsed renders the elapsed time for a row, live for running
// workers.
func formatRowElapsed(row WorkerRow, now time.Time) string {
	switch row.Status {
	case StatusRunning:
		if row.StartedAt.IsZero() {
			return ""
		}
		return formatDuration(now.Sub(row.StartedAt))
	case StatusFinished, StatusFailed:
		return formatDuration(row.Elapsed)
	}
	return ""
}

// formatRowStatus renders a status cell, with the exit code for failures.
func formatRowStatus(row WorkerRow, noColor bool) string {
	text := string(row.Status)
	if row.Status == StatusFailed && row.ExitCode != 0 {
		text += " (exit " + fmtInt(row.ExitCode) + ")"
	}
	return stylizeStatus(text, row.Status, noColor)
}

// stylizeStatus colors a status string by bucket.
func stylizeStatus(text string, status WorkerStatus, noColor bool) string {
	if noColor {
		return text
	}
	var color lipgloss.Color
	switch status {
	case StatusRunning:
		color = lipgloss.Color("33")
	case StatusFinished:
		color = lipgloss.Color("40")
	case StatusFailed:
		color = lipgloss.Color("160")
	default:
		color = lipgloss.Color("242")
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
