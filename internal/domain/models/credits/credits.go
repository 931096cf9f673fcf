package credits

import "time"

// Grant is a credit allocation purchased or awarded to a user. Consumption
// draws grants down oldest-expiry-first; Remaining never goes negative.
type Grant struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Amount    int64      `json:"amount" db:"amount"`
	Remaining int64      `json:"remaining" db:"remaining"`
	Reason    string     `json:"reason" db:"reason"` // "purchase", "promo", "monthly"
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Usage records the token cost of a single AI request, for billing display.
type Usage struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	Model            string    `json:"model" db:"model"`
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	Credits          int64     `json:"credits" db:"credits"` // credits charged
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Balance summarizes a user's grants for the billing screen.
type Balance struct {
	Available int64      `json:"available"`
	Granted   int64      `json:"granted"`
	Consumed  int64      `json:"consumed"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // earliest expiry among live grants
}
