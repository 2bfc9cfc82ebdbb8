package live

import (
	"time"

	"medeval/internal/dataset"
)

// WorkerStatus is the display status of one worker row.
type WorkerStatus string

const (
	// StatusPending marks a worker planned but not yet launched.
	StatusPending WorkerStatus = "pending"
	// StatusRunning marks a launched worker.
	StatusRunning WorkerStatus = "running"
	// StatusFinished marks a worker that exited cleanly.
	StatusFinished WorkerStatus = "finished"
	// StatusFailed marks a worker that exited non-zero.
	StatusFailed WorkerStatus = "failed"
)

// WorkerRow holds UI state for a single worker.
type WorkerRow struct {
	Index     int
	Tag       string
	Device    string
	Range     dataset.Range
	Status    WorkerStatus
	Elapsed   time.Duration
	StartedAt time.Time
	ExitCode  int
	Error     string
}

// StatusCounts aggregates worker counts by status bucket.
type StatusCounts struct {
	Pending  int
	Running  int
	Finished int
	Failed   int
}

// State captures the live UI state for an evaluation run.
type State struct {
	RunID          string
	Model          string
	Dataset        string
	TotalQuestions int
	SampleSize     int
	StartedAt      time.Time
	LastEvent      string
	Rows           []WorkerRow
	Counts         StatusCounts
	Finished       bool
}
