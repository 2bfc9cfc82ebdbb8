package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Attribute names a perturbation axis recorded on augmented questions.
type Attribute string

// Perturbation axes produced by the augmentation tooling.
const (
	AttributeContrast Attribute = "contrast"
	AttributeCrop     Attribute = "crop"
	AttributeZoom     Attribute = "zoom"
)

// baseLevel is the attribute value assigned to unperturbed images.
const baseLevel = 1.0

// ParseAttribute validates an attribute name.
func ParseAttribute(name string) (Attribute, error) {
	switch Attribute(strings.ToLower(strings.TrimSpace(name))) {
	case AttributeContrast:
		return AttributeContrast, nil
	case AttributeCrop:
		return AttributeCrop, nil
	case AttributeZoom:
		return AttributeZoom, nil
	}
	return "", fmt.Errorf("unknown attribute %q (expected contrast|crop|zoom)", name)
}

// LevelStats is accuracy at one perturbation level.
type LevelStats struct {
	Level    float64 `json:"level"`
	Accuracy float64 `json:"accuracy"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
}

// PairAgreement reports how often the base level and one perturbed level
// agree on per-question correctness.
type PairAgreement struct {
	Level     float64 `json:"level"`
	Rate      float64 `json:"agreement_rate"`
	Agreed    int     `json:"questions_agreed"`
	Compared  int     `json:"questions_compared"`
}

// Agreement summarizes correctness stability across perturbation levels.
type Agreement struct {
	OverallRate   float64         `json:"overall_agreement_rate"`
	FullAgreement int             `json:"questions_with_full_agreement"`
	Compared      int             `json:"total_questions_compared"`
	BaseVsOthers  []PairAgreement `json:"base_vs_others"`
}

// AttributeAnalysis is the per-level accuracy and agreement breakdown for
// one perturbation axis.
type AttributeAnalysis struct {
	Attribute     Attribute    `json:"attribute"`
	TotalAccuracy float64      `json:"total_accuracy"`
	TotalCorrect  int          `json:"total_correct"`
	TotalCount    int          `json:"total_count"`
	Levels        []LevelStats `json:"levels"`
	Agreement     Agreement    `json:"agreement"`
}

// attributeValue reads the level for the chosen axis; unperturbed records
// (no attribute) count as the base level.
func attributeValue(detail Detail, attribute Attribute) float64 {
	var value *float64
	switch attribute {
	case AttributeContrast:
		value = detail.Contrast
	case AttributeCrop:
		value = detail.Crop
	case AttributeZoom:
		value = detail.Zoom
	}
	if value == nil {
		return baseLevel
	}
	return *value
}

// baseQuestionID strips the attribute suffix from an augmented question id
// so perturbed variants group with their source question.
func baseQuestionID(detail Detail, attribute Attribute) string {
	id := detail.OriginalQuestionID
	if id == "" {
		id = detail.QuestionID
	}
	marker := "_" + string(attribute) + "_"
	if idx := strings.Index(id, marker); idx >= 0 {
		return id[:idx]
	}
	return id
}

// AnalyzeAttribute computes per-level accuracy and agreement over one or
// more evaluations (a perturbed run is usually analyzed together with its
// base run).
func AnalyzeAttribute(attribute Attribute, evals ...Evaluation) AttributeAnalysis {
	analysis := AttributeAnalysis{Attribute: attribute}

	type counts struct{ correct, total int }
	levelCounts := map[float64]*counts{}
	questionLevels := map[string]map[float64]bool{}

	for _, eval := range evals {
		analysis.TotalCorrect += eval.Correct
		analysis.TotalCount += eval.Total
		for _, detail := range eval.Details {
			level := attributeValue(detail, attribute)
			c, ok := levelCounts[level]
			if !ok {
				c = &counts{}
				levelCounts[level] = c
			}
			c.total++
			if detail.Correct {
				c.correct++
			}
			baseID := baseQuestionID(detail, attribute)
			if questionLevels[baseID] == nil {
				questionLevels[baseID] = map[float64]bool{}
			}
			questionLevels[baseID][level] = detail.Correct
		}
	}

	if analysis.TotalCount > 0 {
		analysis.TotalAccuracy = float64(analysis.TotalCorrect) / float64(analysis.TotalCount)
	}

	levels := make([]float64, 0, len(levelCounts))
	for level := range levelCounts {
		levels = append(levels, level)
	}
	sort.Float64s(levels)
	for _, level := range levels {
		c := levelCounts[level]
		stats := LevelStats{Level: level, Correct: c.correct, Total: c.total}
		if c.total > 0 {
			stats.Accuracy = float64(c.correct) / float64(c.total)
		}
		analysis.Levels = append(analysis.Levels, stats)
	}

	analysis.Agreement = computeAgreement(levels, questionLevels)
	return analysis
}

// computeAgreement derives base-vs-level and unanimous agreement rates.
func computeAgreement(levels []float64, questionLevels map[string]map[float64]bool) Agreement {
	agreement := Agreement{}

	for _, level := range levels {
		if level == baseLevel {
			continue
		}
		pair := PairAgreement{Level: level}
		for _, perLevel := range questionLevels {
			baseCorrect, hasBase := perLevel[baseLevel]
			levelCorrect, hasLevel := perLevel[level]
			if !hasBase || !hasLevel {
				continue
			}
			pair.Compared++
			if baseCorrect == levelCorrect {
				pair.Agreed++
			}
		}
		if pair.Compared > 0 {
			pair.Rate = float64(pair.Agreed) / float64(pair.Compared)
		}
		agreement.BaseVsOthers = append(agreement.BaseVsOthers, pair)
	}

	for _, perLevel := range questionLevels {
		if len(perLevel) <= 1 {
			continue
		}
		agreement.Compared++
		unanimous := true
		var first, got bool
		for _, correct := range perLevel {
			if !got {
				first = correct
				got = true
				continue
			}
			if correct != first {
				unanimous = false
				break
			}
		}
		if unanimous {
			agreement.FullAgreement++
		}
	}
	if agreement.Compared > 0 {
		agreement.OverallRate = float64(agreement.FullAgreement) / float64(agreement.Compared)
	}
	return agreement
}
