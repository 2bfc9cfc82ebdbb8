package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medeval/internal/analysis"
	"medeval/internal/merge"
)

// workerDetails is the slice of per-question records inside one worker
// section of a merged summary.
type workerDetails struct {
	DetailedResults []analysis.Detail `json:"detailed_results"`
}

// RunKey returns a deterministic fingerprint for a merged summary, used to
// deduplicate repeated ingestions of the same run.
func RunKey(merged merge.Merged) (string, error) {
	data, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return FingerprintJSON(json.RawMessage(data))
}

// IngestRun stores a merged evaluation summary and its per-question
// results. Re-ingesting the same summary is a no-op; the stored run id is
// returned either way.
func IngestRun(ctx context.Context, db *sql.DB, merged merge.Merged, createdAt time.Time) (string, error) {
	if ctx == nil {
		return "", errors.New("store: context is nil")
	}
	if db == nil {
		return "", errors.New("store: db is nil")
	}
	key, err := RunKey(merged)
	if err != nil {
		return "", err
	}
	summary, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	id := merged.RunID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, run_key, model, dataset, accuracy, correct, total, workers, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_key) DO NOTHING`,
		id,
		key,
		merged.Model,
		merged.Dataset,
		merged.Accuracy,
		merged.Correct,
		merged.Total,
		len(merged.Workers),
		string(summary),
		createdAt,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	runID, err := lookupID(ctx, db, "runs", "run_id", "run_key", key)
	if err != nil {
		return "", fmt.Errorf("lookup run id: %w", err)
	}

	for _, worker := range merged.Workers {
		var section workerDetails
		if err := json.Unmarshal(worker.Raw, &section); err != nil {
			return "", fmt.Errorf("parse %s results: %w", worker.Tag, err)
		}
		for _, detail := range section.DetailedResults {
			if _, err := db.ExecContext(
				ctx,
				`INSERT INTO question_results (result_id, run_id, question_id, worker_tag, gt_answer, extracted_answer, model_response, correct)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT (run_id, question_id) DO NOTHING`,
				uuid.NewString(),
				runID,
				detail.QuestionID,
				worker.Tag,
				nullableString(&detail.GTAnswer),
				nullableString(detail.ExtractedAnswer),
				nullableString(&detail.ModelResponse),
				detail.Correct,
			); err != nil {
				return "", fmt.Errorf("insert result %s: %w", detail.QuestionID, err)
			}
		}
	}
	return runID, nil
}

// nullableString converts an optional string pointer into a SQL argument.
func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}

// lookupID fetches a single ID column value for a row keyed by keyColumn.
func lookupID(ctx context.Context, db *sql.DB, table, idColumn, keyColumn, key string) (string, error) {
	query := fmt.Sprintf("SELECT CAST(%s AS VARCHAR) FROM %s WHERE %s = ?", idColumn, table, keyColumn)
	var id string
	if err := db.QueryRowContext(ctx, query, key).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
