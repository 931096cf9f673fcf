package notes

import (
	"time"
)

// Note is a markdown note in the flat storage model. Category is a
// slash-delimited path string ("研究/AI/深層学習"), not a foreign key:
// there is no folder table, the hierarchy is derived from these strings.
type Note struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Category  string    `json:"category" db:"category"` // "" = uncategorized (root)
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"` // Markdown content
	Order     *int      `json:"order,omitempty" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
