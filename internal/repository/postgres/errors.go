package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// unique_violation, raised by the (user_id, category, title) note index
const codeUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// The note repository maps it to a ConflictError carrying the existing row's
// ID so the API can return the duplicate with a 409.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsNoRows reports whether a single-row query came back empty. Repositories
// map it to domain.ErrNotFound, so a miss and a row owned by someone else
// look the same to callers.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
