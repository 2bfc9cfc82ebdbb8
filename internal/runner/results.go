package runner

import (
	"time"

	"medeval/internal/dataset"
	"medeval/internal/merge"
)

// WorkerOutcome records where one worker wrote its outputs.
type WorkerOutcome struct {
	Tag         string        `json:"tag"`
	Device      string        `json:"device"`
	Range       dataset.Range `json:"range"`
	AnswersPath string        `json:"answers_path"`
	SummaryPath string        `json:"summary_path"`
}

// Results is the full record of one evaluation run.
type Results struct {
	RunID          string          `json:"run_id"`
	Model          string          `json:"model"`
	Dataset        string          `json:"dataset"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	TotalQuestions int             `json:"total_questions"`
	SampleSize     int             `json:"sample_size"`
	Workers        []WorkerOutcome `json:"workers"`
	Merged         merge.Merged    `json:"merged"`
	AnswersPath    string          `json:"answers_path"`
	SummaryPath    string          `json:"summary_path"`
	Removed        []string        `json:"removed,omitempty"`
}
