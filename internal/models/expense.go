package models

import "github.com/shopspring/decimal"

// SplitType identifies how an expense is divided among its participants.
type SplitType string

const (
	// SplitEqual divides the expense amount equally among participants.
	SplitEqual SplitType = "equal"

	// SplitWeighted divides the amount by per-participant weights.
	SplitWeighted SplitType = "weighted"

	// SplitItemized uses per-participant amounts precomputed by the
	// itemized calculator.
	SplitItemized SplitType = "itemized"
)

// Expense represents one shared expense on a trip.
// Expenses are immutable history: an edit creates a replacement expense and a
// fresh breakdown, never an in-place patch.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// TripID is the trip this expense belongs to.
	TripID string `json:"tripId"`

	// Description is the human-readable name (e.g. "Dinner at Luigi's").
	Description string `json:"description"`

	// Currency is the ISO 4217 code the expense was paid in. Settlement is
	// computed per currency; amounts are never summed across currencies.
	Currency string `json:"currency"`

	// Amount is the full expense amount, extras included.
	Amount decimal.Decimal `json:"amount"`

	// PayerID is the participant who paid the full amount.
	PayerID string `json:"payerId"`

	// Category is an optional label for per-category summaries.
	Category string `json:"category,omitempty"`

	SplitType SplitType `json:"splitType"`

	// Participants is the list of user IDs splitting the expense.
	// For equal splits this is the whole input; weighted and itemized splits
	// derive it from Weights / ParticipantAmounts.
	Participants []string `json:"participants"`

	// Weights maps participant ID to split weight (weighted splits only).
	Weights map[string]decimal.Decimal `json:"weights,omitempty"`

	// ParticipantAmounts is the flat per-participant result of the itemized
	// calculator, persisted with the expense (itemized splits only).
	ParticipantAmounts map[string]decimal.Decimal `json:"participantAmounts,omitempty"`

	// Items, Extras and Rule preserve the itemized bill inputs for audit
	// display and recomputation (itemized splits only).
	Items  []LineItem      `json:"items,omitempty"`
	Extras *Extras         `json:"extras,omitempty"`
	Rule   *AllocationRule `json:"rule,omitempty"`

	// Breakdown is the per-participant allocation computed when the expense
	// was created (itemized splits only).
	Breakdown map[string]*ParticipantBreakdown `json:"breakdown,omitempty"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"createdAt"`
}
