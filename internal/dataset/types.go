package dataset

import "encoding/json"

// Question carries the fields the orchestrator reads from a benchmark
// record. The complete record is preserved in Raw and never rewritten;
// only the external evaluator interprets it.
type Question struct {
	ID      string
	Dataset string
	Raw     json.RawMessage
}

// Set is an ordered question collection loaded from a benchmark file.
type Set struct {
	Questions []Question
}

// Len returns the number of questions in the set.
func (s Set) Len() int {
	return len(s.Questions)
}

// Range is a half-open index interval [Start, End) into a sampled set.
type Range struct {
	Start int
	End   int
}

// Size returns the number of indices covered by the range.
func (r Range) Size() int {
	return r.End - r.Start
}
