package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// defaultColumns returns the worker table layout.
func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Worker", Width: 8},
		{Title: "Device", Width: 8},
		{Title: "Range", Width: 16},
		{Title: "Status", Width: 20},
		{Title: "Elapsed", Width: 10},
	}
}

// columnsForWidth widens the status column on wide terminals.
func columnsForWidth(width int) []table.Column {
	columns := defaultColumns()
	extra := width - 70
	if extra > 0 {
		columns[3].Width += extra
	}
	return columns
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			row.Tag,
			row.Device,
			formatRange(row),
			formatRowStatus(row, noColor),
			formatRowElapsed(row, now),
		})
	}
	return rows
}
