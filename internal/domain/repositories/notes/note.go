package notes

import (
	"context"

	"kiroku/internal/domain/models/notes"
)

// NoteRepository defines data access operations for notes.
// The category path service reads whole user note sets and proposes batch
// mutations; it does not own storage (flat key-value model on the client,
// a flat table here).
type NoteRepository interface {
	// Create creates a new note
	Create(ctx context.Context, note *notes.Note) error

	// GetByID retrieves a note by ID, scoped to a user
	GetByID(ctx context.Context, id, userID string) (*notes.Note, error)

	// ListByUser retrieves all notes for a user (the flat file set)
	ListByUser(ctx context.Context, userID string) ([]notes.Note, error)

	// ListByCategoryPrefix retrieves notes whose category equals path or is
	// nested under it (path + "/" prefix match)
	ListByCategoryPrefix(ctx context.Context, userID, path string) ([]notes.Note, error)

	// Update updates an existing note
	Update(ctx context.Context, note *notes.Note) error

	// UpdateAll updates a batch of notes; callers run it inside a transaction
	// so a rename cascade lands atomically
	UpdateAll(ctx context.Context, batch []notes.Note) error

	// Delete deletes a note
	Delete(ctx context.Context, id, userID string) error

	// DeleteByCategoryPrefix deletes every note at or under a category path
	DeleteByCategoryPrefix(ctx context.Context, userID, path string) (int64, error)
}

// VersionRepository defines data access operations for note version snapshots
type VersionRepository interface {
	// Create stores a new snapshot
	Create(ctx context.Context, version *notes.NoteVersion) error

	// GetByID retrieves a snapshot, scoped through its note's owner
	GetByID(ctx context.Context, id, noteID string) (*notes.NoteVersion, error)

	// ListByNote lists snapshots for a note, newest first
	ListByNote(ctx context.Context, noteID string) ([]notes.NoteVersion, error)

	// LatestVersion returns the highest version number for a note (0 if none)
	LatestVersion(ctx context.Context, noteID string) (int, error)

	// DeleteByNote removes all snapshots for a note
	DeleteByNote(ctx context.Context, noteID string) error
}
