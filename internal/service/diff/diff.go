// Package diff computes hybrid line+character diffs between two versions of
// note content. The line pass is an LCS alignment that classifies every line
// as common, deleted or added in document order; paired deleted/added lines
// then get a character-level sub-diff so a one-character edit highlights as
// an inline change instead of two fully-highlighted lines. The inline pass
// never feeds back into line classification, which is what keeps a small
// edit from fragmenting into extra diff lines.
package diff

import "strings"

// LineType classifies a diff line.
type LineType string

const (
	LineCommon  LineType = "common"
	LineDeleted LineType = "deleted"
	LineAdded   LineType = "added"
)

// Line is one entry of a diff result, in document order. Line numbers are
// 1-based; zero means the number does not apply to this line type
// (OriginalLineNumber is set on common/deleted, NewLineNumber on common/added).
type Line struct {
	Type               LineType       `json:"type"`
	Content            string         `json:"content"`
	OriginalLineNumber int            `json:"original_line_number,omitempty"`
	NewLineNumber      int            `json:"new_line_number,omitempty"`
	InlineChanges      []InlineChange `json:"inline_changes,omitempty"`
}

// Generate computes the hybrid diff from original to updated content.
//
// Empty input counts as zero lines, not one empty line: diffing "" against a
// one-line document yields exactly one added line.
func Generate(original, updated string) []Line {
	origLines := splitLines(original)
	newLines := splitLines(updated)

	lines := alignLines(origLines, newLines)
	attachInlineChanges(lines)
	return lines
}

// splitLines splits content on "\n"; the empty document has no lines.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// alignLines runs the line-level LCS and emits classified lines in document
// order. Within a changed region deletions come before additions, so the
// inline pass sees contiguous deleted/added runs.
func alignLines(origLines, newLines []string) []Line {
	// Trim the common prefix and suffix first; real edits touch a few lines
	// in the middle of a note and the DP table only needs the changed core.
	prefix := 0
	for prefix < len(origLines) && prefix < len(newLines) && origLines[prefix] == newLines[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(origLines)-prefix && suffix < len(newLines)-prefix &&
		origLines[len(origLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	coreOrig := origLines[prefix : len(origLines)-suffix]
	coreNew := newLines[prefix : len(newLines)-suffix]

	result := make([]Line, 0, len(origLines)+len(newLines)-prefix-suffix)
	for i := 0; i < prefix; i++ {
		result = append(result, Line{
			Type:               LineCommon,
			Content:            origLines[i],
			OriginalLineNumber: i + 1,
			NewLineNumber:      i + 1,
		})
	}

	// LCS length table over the changed core. table[i][j] is the LCS length
	// of coreOrig[i:] and coreNew[j:].
	n, m := len(coreOrig), len(coreNew)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if coreOrig[i] == coreNew[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}

	// Walk the table forward, emitting deletions ahead of additions whenever
	// both moves preserve the LCS.
	origNum, newNum := prefix+1, prefix+1
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && coreOrig[i] == coreNew[j]:
			result = append(result, Line{
				Type:               LineCommon,
				Content:            coreOrig[i],
				OriginalLineNumber: origNum,
				NewLineNumber:      newNum,
			})
			i, j = i+1, j+1
			origNum, newNum = origNum+1, newNum+1
		case j >= m || (i < n && table[i+1][j] >= table[i][j+1]):
			result = append(result, Line{
				Type:               LineDeleted,
				Content:            coreOrig[i],
				OriginalLineNumber: origNum,
			})
			i++
			origNum++
		default:
			result = append(result, Line{
				Type:          LineAdded,
				Content:       coreNew[j],
				NewLineNumber: newNum,
			})
			j++
			newNum++
		}
	}

	for k := suffix; k > 0; k-- {
		result = append(result, Line{
			Type:               LineCommon,
			Content:            origLines[len(origLines)-k],
			OriginalLineNumber: len(origLines) - k + 1,
			NewLineNumber:      len(newLines) - k + 1,
		})
	}

	return result
}

// attachInlineChanges pairs each maximal deleted run with the added run that
// follows it, by position: the k-th deleted line against the k-th added
// line. Pairs that clear the similarity threshold get inline changes;
// unpaired or dissimilar lines keep whole-line highlighting.
func attachInlineChanges(lines []Line) {
	i := 0
	for i < len(lines) {
		if lines[i].Type != LineDeleted {
			i++
			continue
		}
		delStart := i
		for i < len(lines) && lines[i].Type == LineDeleted {
			i++
		}
		addStart := i
		for i < len(lines) && lines[i].Type == LineAdded {
			i++
		}

		delCount := addStart - delStart
		addCount := i - addStart
		pairs := delCount
		if addCount < pairs {
			pairs = addCount
		}
		for k := 0; k < pairs; k++ {
			del := &lines[delStart+k]
			add := &lines[addStart+k]
			if changes, ok := inlineChanges(del.Content, add.Content); ok {
				del.InlineChanges = changes
				add.InlineChanges = changes
			}
		}
	}
}
