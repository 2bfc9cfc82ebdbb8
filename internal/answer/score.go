package answer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Prediction is one evaluator answer record, one JSONL line.
type Prediction struct {
	QuestionID string             `json:"question_id"`
	Prompt     string             `json:"prompt,omitempty"`
	Text       string             `json:"text"`
	AnswerID   string             `json:"answer_id,omitempty"`
	ModelID    string             `json:"model_id,omitempty"`
	Metadata   PredictionMetadata `json:"metadata"`
}

// PredictionMetadata carries the ground truth embedded in answer records.
type PredictionMetadata struct {
	GTAnswer string            `json:"gt_answer"`
	Options  map[string]string `json:"options,omitempty"`
}

// Detail is the per-question scoring record.
type Detail struct {
	QuestionID      string  `json:"question_id"`
	GTAnswer        string  `json:"gt_answer"`
	ExtractedAnswer *string `json:"extracted_answer"`
	ModelResponse   string  `json:"model_response"`
	Correct         bool    `json:"correct"`
}

// Evaluation is the scored summary for a set of predictions. Its shape
// matches the evaluator's summary files so scored output can feed the
// same merge and analysis paths.
type Evaluation struct {
	Accuracy        float64  `json:"accuracy"`
	Correct         int      `json:"correct"`
	Total           int      `json:"total"`
	DetailedResults []Detail `json:"detailed_results"`
}

// maxPredictionLine bounds a single JSONL record; model responses run long.
const maxPredictionLine = 4 * 1024 * 1024

// ReadPredictions loads an answers JSONL file in record order.
func ReadPredictions(path string) ([]Prediction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open predictions %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxPredictionLine)
	var predictions []Prediction
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var pred Prediction
		if err := json.Unmarshal(line, &pred); err != nil {
			return nil, fmt.Errorf("parse predictions %s line %d: %w", path, lineNo, err)
		}
		predictions = append(predictions, pred)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read predictions %s: %w", path, err)
	}
	return predictions, nil
}

// Score extracts an answer from each prediction and compares it against
// the embedded ground truth.
func Score(predictions []Prediction) Evaluation {
	eval := Evaluation{DetailedResults: make([]Detail, 0, len(predictions))}
	for _, pred := range predictions {
		detail := Detail{
			QuestionID:    pred.QuestionID,
			GTAnswer:      pred.Metadata.GTAnswer,
			ModelResponse: pred.Text,
		}
		if extracted, ok := Extract(pred.Text); ok {
			detail.ExtractedAnswer = &extracted
			detail.Correct = extracted == pred.Metadata.GTAnswer
		}
		if detail.Correct {
			eval.Correct++
		}
		eval.Total++
		eval.DetailedResults = append(eval.DetailedResults, detail)
	}
	if eval.Total > 0 {
		eval.Accuracy = float64(eval.Correct) / float64(eval.Total)
	}
	return eval
}

// WriteEvaluation persists a scored evaluation as pretty JSON.
func WriteEvaluation(path string, eval Evaluation) error {
	payload, err := json.MarshalIndent(eval, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write evaluation %s: %w", path, err)
	}
	return nil
}
