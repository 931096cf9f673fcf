package notes

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	models "kiroku/internal/domain/models/notes"
)

func scanNotes(rows pgx.Rows) ([]models.Note, error) {
	var out []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.Category,
			&note.Title,
			&note.Content,
			&note.Order,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return out, nil
}
