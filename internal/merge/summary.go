package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Summary holds the aggregate counts every worker summary must report.
type Summary struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// WorkerResult couples one worker's parsed counts with its full summary
// payload, which is carried through the merge untouched so downstream
// analysis keeps the detailed per-question records.
type WorkerResult struct {
	Tag     string
	Summary Summary
	Raw     json.RawMessage
}

// Merged is the final evaluation summary for a run.
type Merged struct {
	RunID    string
	Model    string
	Dataset  string
	Accuracy float64
	Correct  int
	Total    int
	Workers  []WorkerResult
}

// LoadWorkerSummary reads a per-worker evaluation summary. The file must
// exist and contain a JSON object with integer correct and total fields.
func LoadWorkerSummary(path, tag string) (WorkerResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkerResult{}, fmt.Errorf("read worker summary %s: %w", path, err)
	}
	var probe struct {
		Correct *int `json:"correct"`
		Total   *int `json:"total"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return WorkerResult{}, fmt.Errorf("parse worker summary %s: %w", path, err)
	}
	if probe.Correct == nil || probe.Total == nil {
		return WorkerResult{}, fmt.Errorf("worker summary %s is missing correct/total counts", path)
	}
	return WorkerResult{
		Tag:     tag,
		Summary: Summary{Correct: *probe.Correct, Total: *probe.Total},
		Raw:     json.RawMessage(data),
	}, nil
}

// Reduce folds worker summaries into a merged summary. Summation is
// commutative over the counts; accuracy falls back to 0 when no questions
// were evaluated.
func Reduce(workers []WorkerResult) Merged {
	merged := Merged{Workers: workers}
	for _, worker := range workers {
		merged.Correct += worker.Summary.Correct
		merged.Total += worker.Summary.Total
	}
	if merged.Total > 0 {
		merged.Accuracy = float64(merged.Correct) / float64(merged.Total)
	}
	return merged
}

// MarshalJSON writes the merged summary with stable key order and the
// per-worker summaries nested under gpu<i>_results keys, matching the
// layout the analysis tooling consumes.
func (m Merged) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		payload, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(payload)
		return nil
	}
	if m.RunID != "" {
		if err := writeField("run_id", m.RunID); err != nil {
			return nil, err
		}
	}
	if m.Model != "" {
		if err := writeField("model", m.Model); err != nil {
			return nil, err
		}
	}
	if m.Dataset != "" {
		if err := writeField("dataset", m.Dataset); err != nil {
			return nil, err
		}
	}
	if err := writeField("accuracy", m.Accuracy); err != nil {
		return nil, err
	}
	if err := writeField("correct", m.Correct); err != nil {
		return nil, err
	}
	if err := writeField("total", m.Total); err != nil {
		return nil, err
	}
	for i, worker := range m.Workers {
		raw := worker.Raw
		if len(raw) == 0 {
			payload, err := json.Marshal(worker.Summary)
			if err != nil {
				return nil, err
			}
			raw = payload
		}
		if err := writeField(fmt.Sprintf("gpu%d_results", i), json.RawMessage(raw)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteMerged persists the merged summary as pretty JSON.
func WriteMerged(path string, merged Merged) error {
	payload, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal merged summary: %w", err)
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write merged summary: %w", err)
	}
	return nil
}
