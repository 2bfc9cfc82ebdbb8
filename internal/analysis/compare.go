package analysis

// Difference records one question whose correctness flipped between two
// evaluations.
type Difference struct {
	QuestionID         string `json:"question_id"`
	OriginalQuestionID string `json:"original_question_id,omitempty"`
	BaseCorrect        bool   `json:"base_correct"`
	OtherCorrect       bool   `json:"other_correct"`
}

// Comparison is the outcome of diffing two evaluations.
type Comparison struct {
	BaseTotal    int          `json:"base_total"`
	OtherTotal   int          `json:"other_total"`
	ByQuestionID []Difference `json:"differences_by_question_id"`
	ByOriginalID []Difference `json:"differences_by_original_question_id"`
}

// Compare diffs correctness between two evaluations, keyed both by
// question_id and by original_question_id (augmented runs share the
// latter with their base run). Only questions present in both sides are
// compared; output order follows the base evaluation.
func Compare(base, other Evaluation) Comparison {
	comparison := Comparison{
		BaseTotal:  len(base.Details),
		OtherTotal: len(other.Details),
	}

	otherByQID := make(map[string]Detail, len(other.Details))
	otherByOrig := make(map[string]Detail, len(other.Details))
	for _, detail := range other.Details {
		otherByQID[detail.QuestionID] = detail
		if detail.OriginalQuestionID != "" {
			otherByOrig[detail.OriginalQuestionID] = detail
		}
	}

	for _, detail := range base.Details {
		if counterpart, ok := otherByQID[detail.QuestionID]; ok && counterpart.Correct != detail.Correct {
			comparison.ByQuestionID = append(comparison.ByQuestionID, Difference{
				QuestionID:         detail.QuestionID,
				OriginalQuestionID: detail.OriginalQuestionID,
				BaseCorrect:        detail.Correct,
				OtherCorrect:       counterpart.Correct,
			})
		}
		if detail.OriginalQuestionID == "" {
			continue
		}
		if counterpart, ok := otherByOrig[detail.OriginalQuestionID]; ok && counterpart.Correct != detail.Correct {
			comparison.ByOriginalID = append(comparison.ByOriginalID, Difference{
				QuestionID:         detail.QuestionID,
				OriginalQuestionID: detail.OriginalQuestionID,
				BaseCorrect:        detail.Correct,
				OtherCorrect:       counterpart.Correct,
			})
		}
	}
	return comparison
}
