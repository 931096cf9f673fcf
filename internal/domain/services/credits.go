package services

import (
	"context"

	"kiroku/internal/domain/models/credits"
)

// CreditService exposes the token/credit ledger. Consumption is driven by
// the assistant after each completion; grants come from the purchase flow
// (external) through the admin grant endpoint.
type CreditService interface {
	// GetBalance summarizes the user's live grants
	GetBalance(ctx context.Context, userID string) (*credits.Balance, error)

	// Grant allocates credits to a user
	Grant(ctx context.Context, userID string, amount int64, reason string) (*credits.Grant, error)

	// Charge draws credits for a completed AI request and records usage.
	// Returns InsufficientCreditsError when the live grants cannot cover it.
	Charge(ctx context.Context, userID string, usage *credits.Usage) error

	// ListUsage lists recent usage rows for the billing screen
	ListUsage(ctx context.Context, userID string, limit int) ([]credits.Usage, error)
}
