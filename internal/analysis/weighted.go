package analysis

import "sort"

// WeightedLevels combines per-level accuracy across analyses of the same
// attribute (typically one per dataset) by summing counts, so larger
// datasets weigh proportionally.
func WeightedLevels(analyses []AttributeAnalysis) []LevelStats {
	type counts struct{ correct, total int }
	byLevel := map[float64]*counts{}
	for _, analysis := range analyses {
		for _, stats := range analysis.Levels {
			c, ok := byLevel[stats.Level]
			if !ok {
				c = &counts{}
				byLevel[stats.Level] = c
			}
			c.correct += stats.Correct
			c.total += stats.Total
		}
	}
	levels := make([]float64, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Float64s(levels)
	combined := make([]LevelStats, 0, len(levels))
	for _, level := range levels {
		c := byLevel[level]
		stats := LevelStats{Level: level, Correct: c.correct, Total: c.total}
		if c.total > 0 {
			stats.Accuracy = float64(c.correct) / float64(c.total)
		}
		combined = append(combined, stats)
	}
	return combined
}

// WeightedAgreement combines base-vs-level agreement across analyses by
// summing agreed and compared counts per level.
func WeightedAgreement(analyses []AttributeAnalysis) []PairAgreement {
	type counts struct{ agreed, compared int }
	byLevel := map[float64]*counts{}
	for _, analysis := range analyses {
		for _, pair := range analysis.Agreement.BaseVsOthers {
			c, ok := byLevel[pair.Level]
			if !ok {
				c = &counts{}
				byLevel[pair.Level] = c
			}
			c.agreed += pair.Agreed
			c.compared += pair.Compared
		}
	}
	levels := make([]float64, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Float64s(levels)
	combined := make([]PairAgreement, 0, len(levels))
	for _, level := range levels {
		c := byLevel[level]
		pair := PairAgreement{Level: level, Agreed: c.agreed, Compared: c.compared}
		if c.compared > 0 {
			pair.Rate = float64(c.agreed) / float64(c.compared)
		}
		combined = append(combined, pair)
	}
	return combined
}
