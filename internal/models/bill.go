package models

import "github.com/shopspring/decimal"

// AssignmentMode controls how a line item is divided among its assigned users.
type AssignmentMode string

const (
	// AssignEven splits the item total equally among assigned users.
	AssignEven AssignmentMode = "even"

	// AssignCustom splits the item total by per-user fractional shares.
	// Shares need not sum to 1; they are normalized at allocation time.
	AssignCustom AssignmentMode = "custom"
)

// ItemAssignment describes who is responsible for a line item and in what
// proportion.
type ItemAssignment struct {
	// Mode selects even or custom share splitting.
	Mode AssignmentMode `json:"mode"`

	// Users is the set of participant IDs assigned to the item.
	// A valid, fully-assigned item has at least one user.
	Users []string `json:"users"`

	// Shares maps participant ID to a fractional share of the item.
	// Only consulted when Mode is AssignCustom.
	Shares map[string]decimal.Decimal `json:"shares,omitempty"`
}

// LineItem is a single itemized entry on a bill.
// Line items are immutable once created; an edit replaces the item wholesale.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the human-readable description (e.g. "Burger"). Must be non-empty.
	Name string `json:"name"`

	// Quantity is the number of units. Must be > 0.
	Quantity decimal.Decimal `json:"quantity"`

	// UnitPrice is the price per unit. Must be >= 0.
	UnitPrice decimal.Decimal `json:"unitPrice"`

	// Taxable marks whether the item counts toward tax-restricted subtotals.
	Taxable bool `json:"taxable"`

	// ServiceChargeable marks whether the item counts toward fee-restricted
	// subtotals (service charges and similar fees).
	ServiceChargeable bool `json:"serviceChargeable"`

	// Assignment describes who splits this item and how.
	Assignment ItemAssignment `json:"assignment"`
}

// ItemTotal returns quantity * unit price.
func (li LineItem) ItemTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}
