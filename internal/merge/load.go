package merge

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
)

var workerKeyPattern = regexp.MustCompile(`^gpu(\d+)_results$`)

// LoadMerged reads a merged evaluation summary back into memory,
// recovering the per-worker sections in worker-index order.
func LoadMerged(path string) (Merged, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Merged{}, fmt.Errorf("read merged summary %s: %w", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Merged{}, fmt.Errorf("parse merged summary %s: %w", path, err)
	}

	merged := Merged{}
	stringField := func(key string, dst *string) error {
		payload, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(payload, dst); err != nil {
			return fmt.Errorf("parse merged summary %s: %s: %w", path, key, err)
		}
		return nil
	}
	if err := stringField("run_id", &merged.RunID); err != nil {
		return Merged{}, err
	}
	if err := stringField("model", &merged.Model); err != nil {
		return Merged{}, err
	}
	if err := stringField("dataset", &merged.Dataset); err != nil {
		return Merged{}, err
	}
	var counts struct {
		Accuracy *float64 `json:"accuracy"`
		Correct  *int     `json:"correct"`
		Total    *int     `json:"total"`
	}
	if err := json.Unmarshal(data, &counts); err != nil {
		return Merged{}, fmt.Errorf("parse merged summary %s: %w", path, err)
	}
	if counts.Correct == nil || counts.Total == nil {
		return Merged{}, fmt.Errorf("merged summary %s is missing correct/total counts", path)
	}
	merged.Correct = *counts.Correct
	merged.Total = *counts.Total
	if counts.Accuracy != nil {
		merged.Accuracy = *counts.Accuracy
	}

	type indexed struct {
		index  int
		result WorkerResult
	}
	var workers []indexed
	for key, payload := range raw {
		match := workerKeyPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		var probe Summary
		if err := json.Unmarshal(payload, &probe); err != nil {
			return Merged{}, fmt.Errorf("parse merged summary %s: %s: %w", path, key, err)
		}
		workers = append(workers, indexed{
			index: index,
			result: WorkerResult{
				Tag:     "gpu" + match[1],
				Summary: probe,
				Raw:     payload,
			},
		})
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].index < workers[j].index })
	for _, w := range workers {
		merged.Workers = append(merged.Workers, w.result)
	}
	return merged, nil
}
