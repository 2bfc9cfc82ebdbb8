package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// questionProbe extracts the orchestrator-visible fields from a record.
type questionProbe struct {
	QuestionID string `json:"question_id"`
	Dataset    string `json:"dataset"`
}

// Load reads a benchmark question file containing a JSON array of records.
// Any failure here is a pre-flight failure: the caller must not launch
// workers after Load returns an error.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read question file: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return Set{}, fmt.Errorf("parse question file %s: expected a JSON array: %w", path, err)
	}
	questions := make([]Question, 0, len(records))
	for i, record := range records {
		var probe questionProbe
		if err := json.Unmarshal(record, &probe); err != nil {
			return Set{}, fmt.Errorf("parse question file %s: record %d: %w", path, i, err)
		}
		questions = append(questions, Question{
			ID:      probe.QuestionID,
			Dataset: probe.Dataset,
			Raw:     record,
		})
	}
	return Set{Questions: questions}, nil
}

// FilterByDataset returns the subset tagged with the given dataset name,
// preserving the original order. An empty name keeps everything.
func (s Set) FilterByDataset(name string) Set {
	if name == "" {
		return s
	}
	filtered := make([]Question, 0, len(s.Questions))
	for _, q := range s.Questions {
		if q.Dataset == name {
			filtered = append(filtered, q)
		}
	}
	return Set{Questions: filtered}
}
