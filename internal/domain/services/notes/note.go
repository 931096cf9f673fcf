package notes

import (
	"context"

	"kiroku/internal/domain/models/notes"
	"kiroku/internal/service/diff"
)

// NoteService handles note business logic
type NoteService interface {
	// CreateNote creates a new note under a (possibly new) category path
	CreateNote(ctx context.Context, req *CreateNoteRequest) (*notes.Note, error)

	// GetNote retrieves a note
	GetNote(ctx context.Context, userID, noteID string) (*notes.Note, error)

	// ListNotes lists the user's notes, scoped to a category subtree when
	// categoryPath is non-empty
	ListNotes(ctx context.Context, userID, categoryPath string) ([]notes.Note, error)

	// UpdateNote updates a note; content changes snapshot the prior content
	// as a new version first
	UpdateNote(ctx context.Context, userID, noteID string, req *UpdateNoteRequest) (*notes.Note, error)

	// DeleteNote deletes a note and its version history
	DeleteNote(ctx context.Context, userID, noteID string) error

	// ListVersions lists version snapshots for a note, newest first
	ListVersions(ctx context.Context, userID, noteID string) ([]notes.NoteVersion, error)

	// DiffVersion computes the hybrid diff from a snapshot to the current
	// content. The consistency oracle runs on every result; a failure is an
	// algorithm defect and is logged, not returned to the caller as a 4xx.
	DiffVersion(ctx context.Context, userID, noteID, versionID string) (*VersionDiff, error)

	// ImportNotes imports markdown documents, reading title/category/order
	// from YAML frontmatter when present
	ImportNotes(ctx context.Context, userID string, req *ImportRequest) (*ImportResult, error)
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	UserID   string `json:"-"` // Set by handler from auth context
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Order    *int   `json:"order,omitempty"`
}

// OptionalOrder tracks tri-state semantics for manual ordering updates
// (RFC 7396 PATCH). Transport-agnostic; the handler maps it from the JSON
// body.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear manual ordering)
//   - Present=true, Value=&n: set the sort position
type OptionalOrder struct {
	Present bool
	Value   *int
}

// UpdateNoteRequest represents a note update request.
// Supports partial updates via pointers - only provided fields are updated.
type UpdateNoteRequest struct {
	Category *string `json:"category,omitempty"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Order    OptionalOrder
}

// VersionDiff is the result of comparing a snapshot against current content
type VersionDiff struct {
	NoteID      string      `json:"note_id"`
	VersionID   string      `json:"version_id"`
	FromVersion int         `json:"from_version"`
	Lines       []diff.Line `json:"lines"`
}

// ImportRequest carries raw markdown documents to import
type ImportRequest struct {
	Documents []ImportDocument `json:"documents"`
}

// ImportDocument is one markdown file, frontmatter optional
type ImportDocument struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ImportResult summarizes an import run
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
