package notes

import (
	"context"

	"kiroku/internal/domain/models/notes"
)

// CategoryService manipulates slash-delimited category paths across a user's
// flat note set: tree listing, impact previews, and rename/move/delete
// cascades. All validation is synchronous and happens before any mutation;
// mutations land as a single batch through the transaction manager.
type CategoryService interface {
	// GetTree builds the ordered category tree view from the flat note set.
	// sortMethod is "name" or "fileCount" (see SortMethod constants).
	GetTree(ctx context.Context, userID string, sortMethod string) ([]notes.CategoryNode, error)

	// GetImpact previews what a destructive operation on path would touch
	GetImpact(ctx context.Context, userID, path string) (*notes.CategoryImpact, error)

	// RenameCategory rewrites the path prefix of every note at or under
	// oldPath. Refuses cycles and destination title duplicates.
	RenameCategory(ctx context.Context, userID string, req *MoveCategoryRequest) (*MoveCategoryResult, error)

	// MoveCategory is RenameCategory with move semantics (the destination is
	// an existing location rather than a new leaf name); the prefix-rewrite
	// contract is identical
	MoveCategory(ctx context.Context, userID string, req *MoveCategoryRequest) (*MoveCategoryResult, error)

	// DeleteCategory deletes every note at or under path
	DeleteCategory(ctx context.Context, userID, path string) (*DeleteCategoryResult, error)
}

// Sort methods for sibling category ordering
const (
	SortByName      = "name"      // leaf name lexicographic
	SortByFileCount = "fileCount" // total file count desc, then leaf name
)

// MoveCategoryRequest represents a category rename or move
type MoveCategoryRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// MoveCategoryResult reports the cascade size
type MoveCategoryResult struct {
	OldPath      string `json:"old_path"`
	NewPath      string `json:"new_path"`
	UpdatedNotes int    `json:"updated_notes"`
}

// DeleteCategoryResult reports the cascade size
type DeleteCategoryResult struct {
	Path         string `json:"path"`
	DeletedNotes int64  `json:"deleted_notes"`
}

// ValidationResult is returned by validation helpers so the mobile client
// can show inline feedback. User input problems are values, not errors.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
