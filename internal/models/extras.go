package models

import "github.com/shopspring/decimal"

// ExtraType distinguishes percentage extras from fixed-amount extras.
type ExtraType string

const (
	ExtraPercent ExtraType = "percent"
	ExtraAmount  ExtraType = "amount"
)

// PercentBase names the running subtotal a percentage-type extra is computed
// against. The allocation pipeline evaluates extras in a fixed order
// (discounts, tax, fees, tip), so a base may only reference a subtotal
// produced by an earlier stage.
type PercentBase string

const (
	BasePreTaxItems  PercentBase = "preTaxItemSubtotals"
	BaseTaxableItems PercentBase = "taxableItemSubtotalsOnly"
	BasePostDiscount PercentBase = "postDiscountItemSubtotals"
	BasePostTax      PercentBase = "postTaxSubtotals"
	BasePostFees     PercentBase = "postFeesSubtotals"
)

// Extra is one tax, tip, fee, or discount applied on top of item subtotals.
//
// For percent extras, Value is the percentage (20 means 20%) and Base selects
// the subtotal it is applied against; an empty Base falls back to the
// allocation rule's default. Amount extras use Value directly and ignore Base.
type Extra struct {
	Type  ExtraType       `json:"type"`
	Value decimal.Decimal `json:"value"`
	Base  PercentBase     `json:"base,omitempty"`

	// Label is an optional display name (e.g. "Service charge", "Happy hour").
	Label string `json:"label,omitempty"`
}

// Extras holds every extra attached to a bill. Tax and tip are optional;
// fees and discounts are ordered lists evaluated in declaration order.
type Extras struct {
	Tax       *Extra  `json:"tax,omitempty"`
	Tip       *Extra  `json:"tip,omitempty"`
	Fees      []Extra `json:"fees,omitempty"`
	Discounts []Extra `json:"discounts,omitempty"`
}
