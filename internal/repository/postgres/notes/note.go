// Package notes holds the Postgres implementations of the note and version
// repositories. Category paths are plain columns; hierarchy exists only as a
// prefix convention over them.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	notesRepo "kiroku/internal/domain/repositories/notes"
	"kiroku/internal/repository/postgres"
)

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *postgres.RepositoryConfig) notesRepo.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const noteColumns = "id, user_id, category, title, content, sort_order, created_at, updated_at"

// subtreePattern builds the LIKE pattern matching strict descendants of a
// category path. LIKE treats % and _ as wildcards, so a path like "my_notes"
// must have them escaped or it would also match "myxnotes/...". Queries
// using the pattern carry ESCAPE '\'.
func subtreePattern(path string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(path)
	return escaped + "/%"
}

// Create creates a new note
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Notes, noteColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.Category,
		note.Title,
		note.Content,
		note.Order,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			existingID, queryErr := r.existingNoteID(ctx, note.UserID, note.Category, note.Title)
			if queryErr != nil {
				return fmt.Errorf("note %q already exists in this category: %w", note.Title, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("note %q already exists in this category", note.Title),
				ResourceType: "note",
				ResourceID:   existingID,
			}
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note scoped to its owner
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id, userID string) (*models.Note, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, noteColumns, r.tables.Notes)

	var note models.Note
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
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
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

// ListByUser retrieves all of a user's notes. Ordering is stable so tree
// building downstream is deterministic.
func (r *PostgresNoteRepository) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY category, title
	`, noteColumns, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ListByCategoryPrefix retrieves notes at or under the category path.
// The empty path is the root and matches every note.
func (r *PostgresNoteRepository) ListByCategoryPrefix(ctx context.Context, userID, path string) ([]models.Note, error) {
	if path == "" {
		return r.ListByUser(ctx, userID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND (category = $2 OR category LIKE $3 ESCAPE '\')
		ORDER BY category, title
	`, noteColumns, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, path, subtreePattern(path))
	if err != nil {
		return nil, fmt.Errorf("list notes by category: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Update updates a note
func (r *PostgresNoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET category = $2, title = $3, content = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		note.ID,
		note.Category,
		note.Title,
		note.Content,
		note.Order,
		note.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("note %q already exists in this category", note.Title),
				ResourceType: "note",
				ResourceID:   note.ID,
			}
		}
		return fmt.Errorf("update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdateAll applies a batch of note updates. Callers run this inside a
// transaction so a rename/move cascade lands atomically.
func (r *PostgresNoteRepository) UpdateAll(ctx context.Context, batch []models.Note) error {
	for i := range batch {
		if err := r.Update(ctx, &batch[i]); err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a note scoped to its owner
func (r *PostgresNoteRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByCategoryPrefix deletes every note at or under the category path
// and reports how many rows went away
func (r *PostgresNoteRepository) DeleteByCategoryPrefix(ctx context.Context, userID, path string) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND (category = $2 OR category LIKE $3 ESCAPE '\')
	`, r.tables.Notes)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, userID, path, subtreePattern(path))
	if err != nil {
		return 0, fmt.Errorf("delete notes by category: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *PostgresNoteRepository) existingNoteID(ctx context.Context, userID, category, title string) (string, error) {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE user_id = $1 AND category = $2 AND title = $3
	`, r.tables.Notes)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, category, title).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
