package merge

import (
	"fmt"
	"io"
	"os"
)

// Cleanup removes intermediate files after a successful merge. Removal is
// best-effort: a file that cannot be deleted is reported on diag but does
// not fail the run. Returns the paths that were actually removed.
func Cleanup(paths []string, diag io.Writer) []string {
	removed := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if diag != nil {
				fmt.Fprintf(diag, "cleanup: could not remove %s: %v\n", path, err)
			}
			continue
		}
		removed = append(removed, path)
	}
	return removed
}
