package dataset

import (
	"fmt"
	"math"
)

// SampleSize returns floor(n * ratio), the deterministic prefix length to
// evaluate. The ratio must lie in (0, 1].
func SampleSize(n int, ratio float64) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative question count %d", n)
	}
	if ratio <= 0 || ratio > 1 {
		return 0, fmt.Errorf("sample ratio %g out of range (0, 1]", ratio)
	}
	return int(math.Floor(float64(n) * ratio)), nil
}

// Partition splits [0, size) into workers contiguous half-open ranges in
// index order. Ranges never overlap and their union is exactly [0, size).
// When size does not divide evenly the trailing ranges absorb the
// remainder, so a two-way split of s items is [0, s/2) and [s/2, s).
func Partition(size, workers int) ([]Range, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative sample size %d", size)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("worker count %d must be positive", workers)
	}
	base := size / workers
	rem := size % workers
	ranges := make([]Range, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		length := base
		if i >= workers-rem {
			length++
		}
		ranges = append(ranges, Range{Start: start, End: start + length})
		start += length
	}
	return ranges, nil
}
