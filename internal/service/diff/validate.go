package diff

import (
	"fmt"
	"strings"
)

// Result reports the outcome of a consistency check. Failures are values,
// not errors: an invalid result means the engine itself produced a diff that
// does not reconstruct its inputs, which callers log as a defect.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateConsistency is the correctness oracle for Generate: the original
// text must be exactly the common+deleted lines in order, and the updated
// text exactly the common+added lines. It runs on every comparison served,
// not just in tests.
func ValidateConsistency(original, updated string, lines []Line) Result {
	var origLines, newLines []string
	for _, line := range lines {
		switch line.Type {
		case LineCommon:
			origLines = append(origLines, line.Content)
			newLines = append(newLines, line.Content)
		case LineDeleted:
			origLines = append(origLines, line.Content)
		case LineAdded:
			newLines = append(newLines, line.Content)
		default:
			return Result{Error: fmt.Sprintf("unknown line type %q", line.Type)}
		}
	}

	if got := strings.Join(origLines, "\n"); got != original {
		return Result{Error: fmt.Sprintf(
			"original text does not reconstruct: %d/%d bytes", len(got), len(original))}
	}
	if got := strings.Join(newLines, "\n"); got != updated {
		return Result{Error: fmt.Sprintf(
			"updated text does not reconstruct: %d/%d bytes", len(got), len(updated))}
	}

	return Result{Valid: true}
}
