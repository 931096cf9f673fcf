package notes

// CategoryNode is one entry in the derived category tree view. Nodes are
// rebuilt on every listing request from the flat list of note category
// strings and never mutated in place. Intermediate nodes are synthesized for
// every path prefix that has descendant notes but no direct ones.
type CategoryNode struct {
	FullPath    string  `json:"full_path"`        // "研究/AI"
	Category    string  `json:"category"`         // leaf segment, "AI"
	Level       int     `json:"level"`            // 0 for top-level categories
	Parent      *string `json:"parent,omitempty"` // nil for top-level
	FileCount   int     `json:"file_count"`       // notes at or under this path
	DirectFiles []Note  `json:"direct_files"`     // notes whose category == FullPath
}

// CategoryImpact previews what a destructive category operation would touch.
// Computed by scanning the full note set; shown to the user before
// rename/move/delete confirmation.
type CategoryImpact struct {
	DirectFileCount int      `json:"direct_file_count"`
	ChildCategories []string `json:"child_categories"` // immediate child paths
	TotalFileCount  int      `json:"total_file_count"`
}
