package models

import "github.com/shopspring/decimal"

// Settlement represents a recorded payment between trip members to clear
// debts (e.g. "Bob paid Alice $20 back").
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// TripID is the trip this settlement belongs to.
	TripID string `json:"tripId"`

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string `json:"fromUserId"`

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string `json:"toUserId"`

	// Currency is the ISO 4217 code the payment was made in.
	Currency string `json:"currency"`

	// Amount is the payment amount. Must be > 0.
	Amount decimal.Decimal `json:"amount"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"createdAt"`

	// Note is an optional description for the settlement.
	Note string `json:"note,omitempty"`
}

// PersonSummary is one participant's aggregate position for a single
// currency. It is always recomputed from the expense set, never stored as
// source of truth.
type PersonSummary struct {
	UserID string `json:"userId"`

	// TotalPaid is the sum of expense amounts this person paid.
	TotalPaid decimal.Decimal `json:"totalPaid"`

	// TotalOwed is the sum of this person's shares across all expenses.
	TotalOwed decimal.Decimal `json:"totalOwed"`

	// Net is TotalPaid - TotalOwed. Positive means the person is owed money.
	Net decimal.Decimal `json:"net"`

	// CategoryBreakdown maps expense category to the amount this person owed
	// in that category. Uncategorized expenses are omitted.
	CategoryBreakdown map[string]decimal.Decimal `json:"categoryBreakdown,omitempty"`
}

// Transfer is a single suggested payment. Applying every transfer in a
// settlement result leaves each participant's net balance at zero.
type Transfer struct {
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
}
