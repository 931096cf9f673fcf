package diff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// InlineType classifies a character-level span within a paired line.
type InlineType string

const (
	InlineEqual  InlineType = "equal"
	InlineDelete InlineType = "delete"
	InlineInsert InlineType = "insert"
)

// InlineChange is a contiguous character span. StartIndex/EndIndex are
// half-open rune offsets: delete and equal spans index into the original
// line, insert spans into the new line.
type InlineChange struct {
	Type       InlineType `json:"type"`
	Content    string     `json:"content"`
	StartIndex int        `json:"start_index"`
	EndIndex   int        `json:"end_index"`
}

// inlineSimilarityThreshold is the minimum shared-character ratio for a
// deleted/added pair to count as a modification of one line rather than an
// unrelated replacement. Below it both lines keep whole-line highlighting.
const inlineSimilarityThreshold = 0.3

// inlineChanges computes the character-level sub-diff between a deleted line
// and the added line it was paired with. Reports ok=false when the lines are
// too dissimilar to present as an inline edit.
func inlineChanges(oldLine, newLine string) ([]InlineChange, bool) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldLine, newLine, false)
	// Semantic cleanup merges coincidental single-character equalities into
	// word-ish spans, which is what the editor highlights.
	diffs = dmp.DiffCleanupSemantic(diffs)

	oldLen := utf8.RuneCountInString(oldLine)
	newLen := utf8.RuneCountInString(newLine)
	equalRunes := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			equalRunes += utf8.RuneCountInString(d.Text)
		}
	}
	if oldLen+newLen > 0 {
		similarity := float64(2*equalRunes) / float64(oldLen+newLen)
		if similarity < inlineSimilarityThreshold {
			return nil, false
		}
	}

	changes := make([]InlineChange, 0, len(diffs))
	origIdx, newIdx := 0, 0
	for _, d := range diffs {
		runes := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			changes = append(changes, InlineChange{
				Type:       InlineEqual,
				Content:    d.Text,
				StartIndex: origIdx,
				EndIndex:   origIdx + runes,
			})
			origIdx += runes
			newIdx += runes
		case diffmatchpatch.DiffDelete:
			changes = append(changes, InlineChange{
				Type:       InlineDelete,
				Content:    d.Text,
				StartIndex: origIdx,
				EndIndex:   origIdx + runes,
			})
			origIdx += runes
		case diffmatchpatch.DiffInsert:
			changes = append(changes, InlineChange{
				Type:       InlineInsert,
				Content:    d.Text,
				StartIndex: newIdx,
				EndIndex:   newIdx + runes,
			})
			newIdx += runes
		}
	}

	return changes, true
}
