package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	models "kiroku/internal/domain/models/credits"
	creditsRepo "kiroku/internal/domain/repositories/credits"
)

// PostgresCreditRepository implements the CreditRepository interface
type PostgresCreditRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(config *RepositoryConfig) creditsRepo.CreditRepository {
	return &PostgresCreditRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListGrants retrieves all grants for a user, including exhausted ones.
// Expiring grants come first so ledger transitions see them in draw order.
func (r *PostgresCreditRepository) ListGrants(ctx context.Context, userID string) ([]models.Grant, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, amount, remaining, reason, expires_at, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY expires_at NULLS LAST, created_at
	`, r.tables.CreditGrants)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var out []models.Grant
	for rows.Next() {
		var grant models.Grant
		err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.Amount,
			&grant.Remaining,
			&grant.Reason,
			&grant.ExpiresAt,
			&grant.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		out = append(out, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	return out, nil
}

// CreateGrant stores a new grant
func (r *PostgresCreditRepository) CreateGrant(ctx context.Context, grant *models.Grant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, amount, remaining, reason, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.CreditGrants)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		grant.ID,
		grant.UserID,
		grant.Amount,
		grant.Remaining,
		grant.Reason,
		grant.ExpiresAt,
		grant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create grant: %w", err)
	}

	return nil
}

// UpdateGrantRemainders persists the Remaining column for drawn-down grants
func (r *PostgresCreditRepository) UpdateGrantRemainders(ctx context.Context, grants []models.Grant) error {
	query := fmt.Sprintf(`UPDATE %s SET remaining = $2 WHERE id = $1`, r.tables.CreditGrants)

	executor := GetExecutor(ctx, r.pool)
	for _, grant := range grants {
		if _, err := executor.Exec(ctx, query, grant.ID, grant.Remaining); err != nil {
			return fmt.Errorf("update grant %s: %w", grant.ID, err)
		}
	}

	return nil
}

// RecordUsage stores a usage row
func (r *PostgresCreditRepository) RecordUsage(ctx context.Context, usage *models.Usage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, model, prompt_tokens, completion_tokens, credits, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.CreditUsage)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		usage.ID,
		usage.UserID,
		usage.Model,
		usage.PromptTokens,
		usage.CompletionTokens,
		usage.Credits,
		usage.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	return nil
}

// ListUsage lists recent usage rows for a user, newest first
func (r *PostgresCreditRepository) ListUsage(ctx context.Context, userID string, limit int) ([]models.Usage, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, model, prompt_tokens, completion_tokens, credits, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.CreditUsage)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var out []models.Usage
	for rows.Next() {
		var usage models.Usage
		err := rows.Scan(
			&usage.ID,
			&usage.UserID,
			&usage.Model,
			&usage.PromptTokens,
			&usage.CompletionTokens,
			&usage.Credits,
			&usage.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}

	return out, nil
}
