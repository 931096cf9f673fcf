package credits

import (
	"errors"
	"testing"
	"time"

	"kiroku/internal/domain"
	models "kiroku/internal/domain/models/credits"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func grantAt(id string, amount, remaining int64, created time.Time, expires *time.Time) models.Grant {
	return models.Grant{
		ID:        id,
		UserID:    "u1",
		Amount:    amount,
		Remaining: remaining,
		CreatedAt: created,
		ExpiresAt: expires,
	}
}

func expiry(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func TestConsumeDrawsExpiringGrantsFirst(t *testing.T) {
	state := NewState([]models.Grant{
		grantAt("permanent", 100, 100, testNow.Add(-48*time.Hour), nil),
		grantAt("soon", 50, 50, testNow.Add(-24*time.Hour), expiry(time.Hour)),
		grantAt("later", 50, 50, testNow.Add(-24*time.Hour), expiry(48*time.Hour)),
	})

	next, err := state.Consume(60, testNow)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	remaining := map[string]int64{}
	for _, g := range next.Grants() {
		remaining[g.ID] = g.Remaining
	}
	if remaining["soon"] != 0 {
		t.Errorf("soon-expiring grant remaining = %d, want 0", remaining["soon"])
	}
	if remaining["later"] != 40 {
		t.Errorf("later-expiring grant remaining = %d, want 40", remaining["later"])
	}
	if remaining["permanent"] != 100 {
		t.Errorf("non-expiring grant remaining = %d, want 100", remaining["permanent"])
	}
}

func TestConsumeNonExpiringOldestFirst(t *testing.T) {
	state := NewState([]models.Grant{
		grantAt("newer", 100, 100, testNow.Add(-time.Hour), nil),
		grantAt("older", 100, 100, testNow.Add(-48*time.Hour), nil),
	})

	next, err := state.Consume(30, testNow)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	for _, g := range next.Grants() {
		switch g.ID {
		case "older":
			if g.Remaining != 70 {
				t.Errorf("older remaining = %d, want 70", g.Remaining)
			}
		case "newer":
			if g.Remaining != 100 {
				t.Errorf("newer remaining = %d, want 100", g.Remaining)
			}
		}
	}
}

func TestConsumeInsufficientLeavesStateUntouched(t *testing.T) {
	state := NewState([]models.Grant{
		grantAt("only", 50, 20, testNow.Add(-time.Hour), nil),
	})

	next, err := state.Consume(25, testNow)

	var insufficient *domain.InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientCreditsError", err)
	}
	if insufficient.Required != 25 || insufficient.Available != 20 {
		t.Errorf("error reports required %d / available %d, want 25 / 20",
			insufficient.Required, insufficient.Available)
	}
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Error("error does not match ErrInsufficientCredits sentinel")
	}
	if got := next.Grants()[0].Remaining; got != 20 {
		t.Errorf("remaining = %d after failed consume, want 20", got)
	}
}

func TestConsumeIgnoresExpiredGrants(t *testing.T) {
	state := NewState([]models.Grant{
		grantAt("expired", 100, 100, testNow.Add(-48*time.Hour), expiry(-time.Minute)),
		grantAt("live", 30, 30, testNow.Add(-time.Hour), nil),
	})

	if _, err := state.Consume(50, testNow); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits (expired grant must not count)", err)
	}

	next, err := state.Consume(30, testNow)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	for _, g := range next.Grants() {
		if g.ID == "live" && g.Remaining != 0 {
			t.Errorf("live remaining = %d, want 0", g.Remaining)
		}
	}
}

func TestExpireReportsLapsedAmount(t *testing.T) {
	state := NewState([]models.Grant{
		grantAt("gone", 100, 40, testNow.Add(-48*time.Hour), expiry(-time.Hour)),
		grantAt("live", 100, 100, testNow.Add(-48*time.Hour), expiry(time.Hour)),
	})

	next, lapsed := state.Expire(testNow)
	if lapsed != 40 {
		t.Errorf("lapsed = %d, want 40", lapsed)
	}
	for _, g := range next.Grants() {
		if g.ID == "gone" && g.Remaining != 0 {
			t.Errorf("expired grant remaining = %d, want 0", g.Remaining)
		}
		if g.ID == "live" && g.Remaining != 100 {
			t.Errorf("live grant remaining = %d, want 100", g.Remaining)
		}
	}
}

func TestBalanceSummary(t *testing.T) {
	state := NewState([]models.Grant{
		grantAt("a", 100, 60, testNow.Add(-48*time.Hour), expiry(24*time.Hour)),
		grantAt("b", 50, 50, testNow.Add(-24*time.Hour), expiry(2*time.Hour)),
		grantAt("c", 200, 0, testNow.Add(-72*time.Hour), nil),
		grantAt("d", 30, 30, testNow.Add(-time.Hour), expiry(-time.Minute)),
	})

	b := state.Balance(testNow)
	if b.Available != 110 {
		t.Errorf("Available = %d, want 110", b.Available)
	}
	if b.Granted != 380 {
		t.Errorf("Granted = %d, want 380", b.Granted)
	}
	if b.Consumed != 240 {
		t.Errorf("Consumed = %d, want 240", b.Consumed)
	}
	if b.ExpiresAt == nil || !b.ExpiresAt.Equal(testNow.Add(2*time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", b.ExpiresAt, testNow.Add(2*time.Hour))
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	base := NewState(nil)
	withGrant := base.Apply(grantAt("g", 10, 10, testNow, nil))

	if len(base.Grants()) != 0 {
		t.Error("Apply mutated the receiver")
	}
	if len(withGrant.Grants()) != 1 {
		t.Errorf("new state holds %d grants, want 1", len(withGrant.Grants()))
	}
}

func TestConsumeZeroOrNegativeIsNoOp(t *testing.T) {
	state := NewState([]models.Grant{grantAt("g", 10, 10, testNow, nil)})
	for _, amount := range []int64{0, -5} {
		next, err := state.Consume(amount, testNow)
		if err != nil {
			t.Fatalf("Consume(%d): %v", amount, err)
		}
		if next.Grants()[0].Remaining != 10 {
			t.Errorf("Consume(%d) changed remaining to %d", amount, next.Grants()[0].Remaining)
		}
	}
}
