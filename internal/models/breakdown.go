package models

import "github.com/shopspring/decimal"

// ExtraKind labels the entries of ParticipantBreakdown.ExtrasAllocated.
type ExtraKind string

const (
	KindTax      ExtraKind = "tax"
	KindTip      ExtraKind = "tip"
	KindFee      ExtraKind = "fee"
	KindDiscount ExtraKind = "discount"
)

// ItemContribution records one participant's share of one line item.
// Contributions are attached for audit display; the breakdown totals are
// authoritative, not the contributions.
type ItemContribution struct {
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	Quantity decimal.Decimal `json:"quantity"`

	UnitPrice decimal.Decimal `json:"unitPrice"`

	// AssignedShare is the fraction of the item this participant is
	// responsible for. Custom assignment weights mean it need not be 1/n.
	AssignedShare decimal.Decimal `json:"assignedShare"`
}

// ParticipantBreakdown is one participant's fully allocated share of an
// itemized expense.
//
// Invariant: Total == ItemsSubtotal + sum(ExtrasAllocated) + RoundedAdjustment,
// and the Totals across all participants sum exactly to the expense grand
// total once the rounding residual has been distributed.
type ParticipantBreakdown struct {
	UserID string `json:"userId"`

	// ItemsSubtotal is the sum of this participant's item shares, pre-extras.
	ItemsSubtotal decimal.Decimal `json:"itemsSubtotal"`

	// ExtrasAllocated maps extra kind to the signed amount allocated to this
	// participant. Discounts are negative.
	ExtrasAllocated map[ExtraKind]decimal.Decimal `json:"extrasAllocated"`

	// RoundedAdjustment is the signed residual applied to this participant so
	// the expense reconciles exactly.
	RoundedAdjustment decimal.Decimal `json:"roundedAdjustment"`

	// Total is the rounded amount this participant owes.
	Total decimal.Decimal `json:"total"`

	Items []ItemContribution `json:"items,omitempty"`
}
