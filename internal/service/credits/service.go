package credits

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/credits"
	"kiroku/internal/domain/repositories"
	creditsRepo "kiroku/internal/domain/repositories/credits"
	"kiroku/internal/domain/services"
)

type creditService struct {
	creditRepo          creditsRepo.CreditRepository
	txManager           repositories.TransactionManager
	creditsPerKiloToken int64
	logger              *slog.Logger
}

// NewCreditService creates a new credit service
func NewCreditService(
	creditRepo creditsRepo.CreditRepository,
	txManager repositories.TransactionManager,
	creditsPerKiloToken int64,
	logger *slog.Logger,
) services.CreditService {
	return &creditService{
		creditRepo:          creditRepo,
		txManager:           txManager,
		creditsPerKiloToken: creditsPerKiloToken,
		logger:              logger,
	}
}

// GetBalance summarizes the user's live grants
func (s *creditService) GetBalance(ctx context.Context, userID string) (*models.Balance, error) {
	grants, err := s.creditRepo.ListGrants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	balance := NewState(grants).Balance(time.Now())
	return &balance, nil
}

// Grant allocates credits to a user
func (s *creditService) Grant(ctx context.Context, userID string, amount int64, reason string) (*models.Grant, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: grant amount must be positive", domain.ErrValidation)
	}

	grant := &models.Grant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Remaining: amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if err := s.creditRepo.CreateGrant(ctx, grant); err != nil {
		return nil, fmt.Errorf("create grant: %w", err)
	}

	s.logger.Info("credits granted",
		"user_id", userID,
		"amount", amount,
		"reason", reason,
	)
	return grant, nil
}

// Charge prices the token usage, draws the credits from the open grants and
// records the usage row, all in one transaction.
func (s *creditService) Charge(ctx context.Context, userID string, usage *models.Usage) error {
	usage.Credits = s.priceTokens(usage.PromptTokens, usage.CompletionTokens)
	if usage.ID == "" {
		usage.ID = uuid.NewString()
	}
	usage.UserID = userID
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now()
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		grants, err := s.creditRepo.ListGrants(txCtx, userID)
		if err != nil {
			return fmt.Errorf("list grants: %w", err)
		}

		next, err := NewState(grants).Consume(usage.Credits, time.Now())
		if err != nil {
			return err
		}

		if err := s.creditRepo.UpdateGrantRemainders(txCtx, changedGrants(grants, next.Grants())); err != nil {
			return fmt.Errorf("update grants: %w", err)
		}
		return s.creditRepo.RecordUsage(txCtx, usage)
	})
	if err != nil {
		return err
	}

	s.logger.Info("credits charged",
		"user_id", userID,
		"model", usage.Model,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"credits", usage.Credits,
	)
	return nil
}

// ListUsage lists recent usage rows for the billing screen
func (s *creditService) ListUsage(ctx context.Context, userID string, limit int) ([]models.Usage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	usage, err := s.creditRepo.ListUsage(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	return usage, nil
}

// priceTokens converts a token count to credits. Partial kilotokens round up
// so a request is never free.
func (s *creditService) priceTokens(promptTokens, completionTokens int) int64 {
	total := int64(promptTokens) + int64(completionTokens)
	if total == 0 {
		return 0
	}
	credits := (total*s.creditsPerKiloToken + 999) / 1000
	if credits == 0 {
		credits = 1
	}
	return credits
}

// changedGrants returns the after-rows whose Remaining moved, so the
// repository only writes what the transition touched.
func changedGrants(before, after []models.Grant) []models.Grant {
	prev := make(map[string]int64, len(before))
	for _, g := range before {
		prev[g.ID] = g.Remaining
	}
	var changed []models.Grant
	for _, g := range after {
		if prev[g.ID] != g.Remaining {
			changed = append(changed, g)
		}
	}
	return changed
}
