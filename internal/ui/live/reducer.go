package live

import (
	"fmt"
	"time"

	"medeval/internal/worker"
)

// ReduceWorker applies a worker event to the UI state.
func ReduceWorker(state State, event worker.Event, now time.Time) State {
	state = ensureRow(state, event.Spec.Index)
	if event.Spec.Index < 0 || event.Spec.Index >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.Spec.Index]
	row.Tag = event.Spec.Tag
	row.Device = event.Spec.Device
	row.Range = event.Spec.Range
	switch event.Type {
	case worker.EventLaunched:
		row.Status = StatusRunning
		row.StartedAt = now
	case worker.EventFinished:
		row.Status = StatusFinished
		row.Elapsed = event.Elapsed
	case worker.EventFailed:
		row.Status = StatusFailed
		row.Elapsed = event.Elapsed
		row.ExitCode = event.ExitCode
		if event.Err != nil {
			row.Error = event.Err.Error()
		}
	}
	state.Rows[event.Spec.Index] = row
	state.Counts = recount(state.Rows)
	if message := formatWorkerEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, index int) State {
	if index < 0 || index < len(state.Rows) {
		return state
	}
	rows := make([]WorkerRow, index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = WorkerRow{Index: i, Status: StatusPending}
	}
	state.Rows = rows
	return state
}

// applySplit seeds one pending row per planned worker.
func applySplit(state State, event Event) State {
	state.TotalQuestions = event.TotalQuestions
	state.SampleSize = event.SampleSize
	rows := make([]WorkerRow, len(event.Specs))
	for i, spec := range event.Specs {
		rows[i] = WorkerRow{
			Index:  spec.Index,
			Tag:    spec.Tag,
			Device: spec.Device,
			Range:  spec.Range,
			Status: StatusPending,
		}
	}
	state.Rows = rows
	state.Counts = recount(rows)
	state.LastEvent = fmt.Sprintf("sampled %d of %d questions across %d workers",
		event.SampleSize, event.TotalQuestions, len(event.Specs))
	return state
}

// recount recomputes status counts for the current rows.
func recount(rows []WorkerRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case StatusPending:
			counts.Pending++
		case StatusRunning:
			counts.Running++
		case StatusFinished:
			counts.Finished++
		case StatusFailed:
			counts.Failed++
		}
	}
	return counts
}

// formatWorkerEvent creates a short footer message for the event.
func formatWorkerEvent(event worker.Event) string {
	switch event.Type {
	case worker.EventLaunched:
		return fmt.Sprintf("%s launched on device %s", event.Spec.Tag, event.Spec.Device)
	case worker.EventFinished:
		return fmt.Sprintf("%s finished (%s)", event.Spec.Tag, formatDuration(event.Elapsed))
	case worker.EventFailed:
		return fmt.Sprintf("%s failed with exit code %d", event.Spec.Tag, event.ExitCode)
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
