package notes

import (
	"sort"
	"strings"

	models "kiroku/internal/domain/models/notes"
	notesSvc "kiroku/internal/domain/services/notes"
)

// GroupNotesByCategory builds the ordered category tree view from a flat
// note set. The result is a depth-first list: each category appears before
// its children, siblings ordered by sortMethod. Intermediate categories are
// synthesized for every path prefix that has descendant notes but no direct
// ones, so "研究/AI/深層学習" alone still yields "研究" and "研究/AI" nodes.
//
// Uncategorized notes (empty category) produce no node; the client renders
// them in a fixed section above the tree.
func GroupNotesByCategory(noteList []models.Note, sortMethod string) []models.CategoryNode {
	direct := make(map[string][]models.Note) // path → notes exactly there
	total := make(map[string]int)            // path → notes at or under
	children := make(map[string][]string)    // parent path → child paths
	seen := make(map[string]bool)

	addNode := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		parent := ParentPath(path)
		children[parent] = append(children[parent], path)
	}

	for _, n := range noteList {
		category := NormalizePath(n.Category)
		if category == "" {
			continue
		}
		direct[category] = append(direct[category], n)

		// Every prefix of the path owns this note in its total count.
		segments := SplitPath(category)
		for i := 1; i <= len(segments); i++ {
			prefix := strings.Join(segments[:i], Separator)
			total[prefix]++
			addNode(prefix)
		}
	}

	// Order siblings, then flatten depth-first.
	for parent := range children {
		sortSiblings(children[parent], total, sortMethod)
	}

	result := make([]models.CategoryNode, 0, len(seen))
	var walk func(path string)
	walk = func(path string) {
		node := models.CategoryNode{
			FullPath:    path,
			Category:    LeafName(path),
			Level:       PathDepth(path) - 1,
			FileCount:   total[path],
			DirectFiles: sortedDirectFiles(direct[path]),
		}
		if parent := ParentPath(path); parent != "" {
			node.Parent = &parent
		}
		result = append(result, node)

		for _, child := range children[path] {
			walk(child)
		}
	}
	for _, top := range children[""] {
		walk(top)
	}

	return result
}

// sortSiblings orders sibling category paths in place. "fileCount" sorts by
// total (recursive) note count descending; ties and the "name" method fall
// back to leaf name lexicographic.
func sortSiblings(paths []string, total map[string]int, sortMethod string) {
	sort.SliceStable(paths, func(i, j int) bool {
		if sortMethod == notesSvc.SortByFileCount && total[paths[i]] != total[paths[j]] {
			return total[paths[i]] > total[paths[j]]
		}
		return LeafName(paths[i]) < LeafName(paths[j])
	})
}

// sortedDirectFiles orders a node's own notes: explicitly ordered notes
// first by their order value, then the rest by title. The order field is the
// mobile app's manual drag ordering and wins over alphabetical placement.
func sortedDirectFiles(noteList []models.Note) []models.Note {
	sorted := make([]models.Note, len(noteList))
	copy(sorted, noteList)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Order != nil && b.Order != nil:
			if *a.Order != *b.Order {
				return *a.Order < *b.Order
			}
			return a.Title < b.Title
		case a.Order != nil:
			return true
		case b.Order != nil:
			return false
		default:
			return a.Title < b.Title
		}
	})

	return sorted
}
