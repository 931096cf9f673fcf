package notes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/notes"
	notesRepo "kiroku/internal/domain/repositories/notes"
	"kiroku/internal/repository/postgres"
)

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) notesRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const versionColumns = "id, note_id, version, title, content, created_at"

// Create stores a version snapshot
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.NoteVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.NoteVersions, versionColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		version.ID,
		version.NoteID,
		version.Version,
		version.Title,
		version.Content,
		version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// GetByID retrieves a version snapshot scoped to its note
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id, noteID string) (*models.NoteVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND note_id = $2
	`, versionColumns, r.tables.NoteVersions)

	var version models.NoteVersion
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, noteID).Scan(
		&version.ID,
		&version.NoteID,
		&version.Version,
		&version.Title,
		&version.Content,
		&version.CreatedAt,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return &version, nil
}

// ListByNote lists version snapshots for a note, newest first
func (r *PostgresVersionRepository) ListByNote(ctx context.Context, noteID string) ([]models.NoteVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE note_id = $1
		ORDER BY version DESC
	`, versionColumns, r.tables.NoteVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []models.NoteVersion
	for rows.Next() {
		var version models.NoteVersion
		err := rows.Scan(
			&version.ID,
			&version.NoteID,
			&version.Version,
			&version.Title,
			&version.Content,
			&version.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out = append(out, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return out, nil
}

// LatestVersion returns the highest version number for a note, 0 when the
// note has no snapshots yet
func (r *PostgresVersionRepository) LatestVersion(ctx context.Context, noteID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version), 0) FROM %s WHERE note_id = $1
	`, r.tables.NoteVersions)

	var latest int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, noteID).Scan(&latest); err != nil {
		return 0, fmt.Errorf("latest version: %w", err)
	}

	return latest, nil
}

// DeleteByNote deletes all version snapshots for a note
func (r *PostgresVersionRepository) DeleteByNote(ctx context.Context, noteID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE note_id = $1`, r.tables.NoteVersions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, noteID); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}

	return nil
}
