package notes

import "time"

// NoteVersion is a content snapshot taken before each content update.
// Versions are immutable; the diff endpoint compares a snapshot against the
// note's current content.
type NoteVersion struct {
	ID        string    `json:"id" db:"id"`
	NoteID    string    `json:"note_id" db:"note_id"`
	Version   int       `json:"version" db:"version"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
