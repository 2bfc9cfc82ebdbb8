package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
)

// Detail is one per-question record from an evaluation summary.
type Detail struct {
	QuestionID         string   `json:"question_id"`
	OriginalQuestionID string   `json:"original_question_id,omitempty"`
	GTAnswer           string   `json:"gt_answer,omitempty"`
	ExtractedAnswer    *string  `json:"extracted_answer,omitempty"`
	ModelResponse      string   `json:"model_response,omitempty"`
	Correct            bool     `json:"correct"`
	Contrast           *float64 `json:"contrast,omitempty"`
	Crop               *float64 `json:"crop,omitempty"`
	Zoom               *float64 `json:"zoom,omitempty"`
}

// Evaluation is a loaded evaluation summary with all detailed results
// flattened across its per-worker sections.
type Evaluation struct {
	Correct int
	Total   int
	Details []Detail
}

var workerKeyPattern = regexp.MustCompile(`^gpu(\d+)_results$`)

// detailSection is the per-worker or single-run result block.
type detailSection struct {
	Correct         int      `json:"correct"`
	Total           int      `json:"total"`
	DetailedResults []Detail `json:"detailed_results"`
}

// LoadEvaluation reads an evaluation summary file, handling both the
// merged layout (gpu<i>_results sections) and single-run summaries with a
// top-level detailed_results list. Worker sections are flattened in
// worker-index order.
func LoadEvaluation(path string) (Evaluation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Evaluation{}, fmt.Errorf("read evaluation %s: %w", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Evaluation{}, fmt.Errorf("parse evaluation %s: %w", path, err)
	}

	eval := Evaluation{}
	if counts, ok := raw["correct"]; ok {
		if err := json.Unmarshal(counts, &eval.Correct); err != nil {
			return Evaluation{}, fmt.Errorf("parse evaluation %s: correct: %w", path, err)
		}
	}
	if counts, ok := raw["total"]; ok {
		if err := json.Unmarshal(counts, &eval.Total); err != nil {
			return Evaluation{}, fmt.Errorf("parse evaluation %s: total: %w", path, err)
		}
	}

	type workerSection struct {
		index   int
		section detailSection
	}
	var workers []workerSection
	for key, payload := range raw {
		match := workerKeyPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		var section detailSection
		if err := json.Unmarshal(payload, &section); err != nil {
			return Evaluation{}, fmt.Errorf("parse evaluation %s: %s: %w", path, key, err)
		}
		workers = append(workers, workerSection{index: index, section: section})
	}

	if len(workers) > 0 {
		sort.Slice(workers, func(i, j int) bool { return workers[i].index < workers[j].index })
		for _, worker := range workers {
			eval.Details = append(eval.Details, worker.section.DetailedResults...)
		}
		return eval, nil
	}

	if payload, ok := raw["detailed_results"]; ok {
		var details []Detail
		if err := json.Unmarshal(payload, &details); err != nil {
			return Evaluation{}, fmt.Errorf("parse evaluation %s: detailed_results: %w", path, err)
		}
		eval.Details = details
	}
	return eval, nil
}
