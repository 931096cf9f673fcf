// Package credits implements the credit ledger: a pure State value with
// explicit transitions, persisted through the CreditRepository port.
//
// Credits are granted in lots, each with an optional expiry, and consumed
// against the open lots. Every transition takes a State and returns a new
// one; nothing in this file touches storage or the clock.
package credits

import (
	"sort"
	"time"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/credits"
)

// State is the in-memory view of one user's open credit grants.
// The zero value is an empty ledger.
type State struct {
	grants []models.Grant
}

// NewState builds a State from stored grants. Order of the input does not
// matter; consumption order is decided at transition time.
func NewState(grants []models.Grant) State {
	out := make([]models.Grant, len(grants))
	copy(out, grants)
	return State{grants: out}
}

// Grants returns a copy of the current grant lots.
func (s State) Grants() []models.Grant {
	out := make([]models.Grant, len(s.grants))
	copy(out, s.grants)
	return out
}

// Apply adds a new grant lot.
func (s State) Apply(grant models.Grant) State {
	next := s.Grants()
	return State{grants: append(next, grant)}
}

// Expire zeroes the remainder of every grant whose ExpiresAt has passed.
// It returns the new state and the total amount that lapsed.
func (s State) Expire(now time.Time) (State, int64) {
	next := s.Grants()
	var lapsed int64
	for i := range next {
		if next[i].ExpiresAt != nil && !next[i].ExpiresAt.After(now) {
			lapsed += next[i].Remaining
			next[i].Remaining = 0
		}
	}
	return State{grants: next}, lapsed
}

// Consume draws amount credits from the open lots: expiring grants first,
// soonest expiry first, then non-expiring grants oldest first. Remaining
// never goes negative. When the open lots cannot cover the amount the state
// is returned unchanged with an InsufficientCreditsError.
func (s State) Consume(amount int64, now time.Time) (State, error) {
	if amount <= 0 {
		return s, nil
	}

	next, _ := s.Expire(now)
	available := next.Balance(now).Available
	if available < amount {
		return s, &domain.InsufficientCreditsError{Required: amount, Available: available}
	}

	order := make([]int, len(next.grants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ga, gb := next.grants[order[a]], next.grants[order[b]]
		switch {
		case ga.ExpiresAt != nil && gb.ExpiresAt != nil:
			return ga.ExpiresAt.Before(*gb.ExpiresAt)
		case ga.ExpiresAt != nil:
			return true
		case gb.ExpiresAt != nil:
			return false
		default:
			return ga.CreatedAt.Before(gb.CreatedAt)
		}
	})

	left := amount
	for _, i := range order {
		if left == 0 {
			break
		}
		draw := next.grants[i].Remaining
		if draw > left {
			draw = left
		}
		next.grants[i].Remaining -= draw
		left -= draw
	}
	return next, nil
}

// Balance summarizes the ledger at a point in time. ExpiresAt is the soonest
// expiry among lots that still hold credits, nil when nothing expires.
func (s State) Balance(now time.Time) models.Balance {
	var b models.Balance
	for i := range s.grants {
		g := s.grants[i]
		b.Granted += g.Amount
		b.Consumed += g.Amount - g.Remaining
		if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
			continue
		}
		b.Available += g.Remaining
		if g.Remaining > 0 && g.ExpiresAt != nil {
			if b.ExpiresAt == nil || g.ExpiresAt.Before(*b.ExpiresAt) {
				expiry := *g.ExpiresAt
				b.ExpiresAt = &expiry
			}
		}
	}
	return b
}
