package credits

import (
	"context"

	"kiroku/internal/domain/models/credits"
)

// CreditRepository is the persistence port for the credit ledger. The ledger
// itself is a pure state container; this port loads the grant set and saves
// the transition results.
type CreditRepository interface {
	// ListGrants retrieves all grants for a user, including exhausted ones
	ListGrants(ctx context.Context, userID string) ([]credits.Grant, error)

	// CreateGrant stores a new grant
	CreateGrant(ctx context.Context, grant *credits.Grant) error

	// UpdateGrantRemainders persists the Remaining column for drawn-down grants
	UpdateGrantRemainders(ctx context.Context, grants []credits.Grant) error

	// RecordUsage stores a usage row
	RecordUsage(ctx context.Context, usage *credits.Usage) error

	// ListUsage lists recent usage rows for a user, newest first
	ListUsage(ctx context.Context, userID string, limit int) ([]credits.Usage, error)
}
