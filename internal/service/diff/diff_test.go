package diff

import (
	"testing"
)

func TestGenerateClassification(t *testing.T) {
	tests := []struct {
		name        string
		original    string
		updated     string
		wantLines   int
		wantCommon  int
		wantDeleted int
		wantAdded   int
	}{
		{
			name:       "no change single line",
			original:   "これは変更されない行",
			updated:    "これは変更されない行",
			wantLines:  1,
			wantCommon: 1,
		},
		{
			name:      "pure addition from empty",
			original:  "",
			updated:   "これは追加される行",
			wantLines: 1,
			wantAdded: 1,
		},
		{
			name:        "pure deletion to empty",
			original:    "これは削除される行",
			updated:     "",
			wantLines:   1,
			wantDeleted: 1,
		},
		{
			name:      "both empty",
			original:  "",
			updated:   "",
			wantLines: 0,
		},
		{
			name:        "modified middle line keeps context",
			original:    "one\ntwo\nthree",
			updated:     "one\ntwo!\nthree",
			wantLines:   4,
			wantCommon:  2,
			wantDeleted: 1,
			wantAdded:   1,
		},
		{
			name:       "appended line",
			original:   "one\ntwo",
			updated:    "one\ntwo\nthree",
			wantLines:  3,
			wantCommon: 2,
			wantAdded:  1,
		},
		{
			name:        "deleted line in middle",
			original:    "one\ntwo\nthree",
			updated:     "one\nthree",
			wantLines:   3,
			wantCommon:  2,
			wantDeleted: 1,
		},
		{
			name:        "reordered lines align on common subsequence",
			original:    "a\nb\nc",
			updated:     "b\nc\na",
			wantLines:   4,
			wantCommon:  2,
			wantDeleted: 1,
			wantAdded:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Generate(tt.original, tt.updated)

			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d: %+v", len(lines), tt.wantLines, lines)
			}

			var common, deleted, added int
			for _, line := range lines {
				switch line.Type {
				case LineCommon:
					common++
				case LineDeleted:
					deleted++
				case LineAdded:
					added++
				}
			}
			if common != tt.wantCommon || deleted != tt.wantDeleted || added != tt.wantAdded {
				t.Errorf("got common=%d deleted=%d added=%d, want common=%d deleted=%d added=%d",
					common, deleted, added, tt.wantCommon, tt.wantDeleted, tt.wantAdded)
			}

			if result := ValidateConsistency(tt.original, tt.updated, lines); !result.Valid {
				t.Errorf("consistency check failed: %s", result.Error)
			}
		})
	}
}

// A single-character edit inside one line must produce exactly one deleted
// and one added line with inline changes. The character pass must never
// re-trigger line granularity and fragment the edit across extra lines.
func TestSingleCharacterEditDoesNotFragment(t *testing.T) {
	original := `これは削除される"文字"`
	updated := `これは削除される""`

	lines := Generate(original, updated)

	if len(lines) != 2 {
		t.Fatalf("got %d diff lines, want exactly 2: %+v", len(lines), lines)
	}
	if lines[0].Type != LineDeleted {
		t.Errorf("line 0 type = %s, want deleted", lines[0].Type)
	}
	if lines[1].Type != LineAdded {
		t.Errorf("line 1 type = %s, want added", lines[1].Type)
	}
	if len(lines[0].InlineChanges) == 0 || len(lines[1].InlineChanges) == 0 {
		t.Fatalf("paired lines must carry inline changes: %+v", lines)
	}

	var foundDelete bool
	for _, change := range lines[0].InlineChanges {
		if change.Type == InlineDelete && change.Content == "文字" {
			foundDelete = true
			if change.EndIndex-change.StartIndex != 2 {
				t.Errorf("delete span covers %d runes, want 2", change.EndIndex-change.StartIndex)
			}
		}
	}
	if !foundDelete {
		t.Errorf("no inline delete span for 文字: %+v", lines[0].InlineChanges)
	}
}

func TestNoChangeProducesOnlyCommonLines(t *testing.T) {
	content := "これは変更されない行"
	for _, line := range Generate(content, content) {
		if line.Type != LineCommon {
			t.Errorf("equal inputs produced a %s line: %+v", line.Type, line)
		}
	}
}

func TestLineNumbers(t *testing.T) {
	lines := Generate("one\ntwo\nthree", "one\ntwo!\nthree")

	// common "one", deleted "two", added "two!", common "three"
	wantOrig := []int{1, 2, 0, 3}
	wantNew := []int{1, 0, 2, 3}
	for i, line := range lines {
		if line.OriginalLineNumber != wantOrig[i] {
			t.Errorf("line %d original number = %d, want %d", i, line.OriginalLineNumber, wantOrig[i])
		}
		if line.NewLineNumber != wantNew[i] {
			t.Errorf("line %d new number = %d, want %d", i, line.NewLineNumber, wantNew[i])
		}
	}
}

func TestDissimilarPairSkipsInlineChanges(t *testing.T) {
	lines := Generate("完全に異なる内容の行です", "unrelated replacement text")

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if len(line.InlineChanges) != 0 {
			t.Errorf("dissimilar pair should keep whole-line highlighting, got %+v", line.InlineChanges)
		}
	}
}

func TestValidateConsistencyRoundTrip(t *testing.T) {
	pairs := []struct {
		name     string
		original string
		updated  string
	}{
		{"both empty", "", ""},
		{"empty to text", "", "これは追加される行"},
		{"text to empty", "これは削除される行", ""},
		{"identical", "a\nb\nc", "a\nb\nc"},
		{"trailing newline added", "a\nb", "a\nb\n"},
		{"trailing newline removed", "a\nb\n", "a\nb"},
		{"blank lines", "a\n\n\nb", "a\n\nb"},
		{"full rewrite", "first\nsecond", "完全\n書き換え\n済み"},
		{"interleaved edits", "a\nb\nc\nd\ne", "a\nB\nc\nD\ne\nf"},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			lines := Generate(tt.original, tt.updated)
			result := ValidateConsistency(tt.original, tt.updated, lines)
			if !result.Valid {
				t.Errorf("round trip failed: %s", result.Error)
			}
		})
	}
}

func TestValidateConsistencyDetectsCorruption(t *testing.T) {
	original, updated := "a\nb", "a\nc"
	lines := Generate(original, updated)

	// Drop a line to corrupt the diff.
	corrupted := lines[:len(lines)-1]
	if result := ValidateConsistency(original, updated, corrupted); result.Valid {
		t.Error("corrupted diff passed the consistency check")
	}
	if result := ValidateConsistency(original, updated, corrupted); result.Error == "" {
		t.Error("invalid result carries no error description")
	}
}

func TestInlineChangeOffsets(t *testing.T) {
	lines := Generate("before text after", "before changed after")

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	for _, change := range lines[0].InlineChanges {
		if change.StartIndex > change.EndIndex {
			t.Errorf("span %+v has inverted range", change)
		}
		if change.Type == InlineInsert {
			continue
		}
		// delete/equal spans index the original line
		runes := []rune(lines[0].Content)
		if change.EndIndex > len(runes) {
			t.Errorf("span %+v exceeds original line length %d", change, len(runes))
		}
	}
}
