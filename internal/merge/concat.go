package merge

import (
	"fmt"
	"os"
)

// ConcatJSONL concatenates per-worker answer files into out, in the order
// given. The result is byte-identical to concatenating well-formed inputs
// by hand; a part missing its final newline gets one so records from
// adjacent workers never share a line. A missing input is fatal and names
// the path.
func ConcatJSONL(parts []string, out string) error {
	outFile, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create merged answers %s: %w", out, err)
	}
	defer outFile.Close()

	for _, part := range parts {
		data, err := os.ReadFile(part)
		if err != nil {
			return fmt.Errorf("read worker answers %s: %w", part, err)
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		if _, err := outFile.Write(data); err != nil {
			return fmt.Errorf("write merged answers %s: %w", out, err)
		}
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close merged answers %s: %w", out, err)
	}
	return nil
}
