package models

import "github.com/shopspring/decimal"

// AbsoluteSplit governs how amount-type extras (and any extra without a
// natural item-level breakdown) are divided among participants.
type AbsoluteSplit string

const (
	// SplitProportional divides an extra in proportion to each participant's
	// items subtotal.
	SplitProportional AbsoluteSplit = "proportionalToItemsSubtotal"

	// SplitEvenAcrossPeople divides an extra equally among all participants
	// with a nonzero item assignment.
	SplitEvenAcrossPeople AbsoluteSplit = "evenAcrossAssignedPeople"
)

// RoundingMode selects how per-participant totals are rounded to the
// currency's minimal unit.
type RoundingMode string

const (
	RoundHalfUp   RoundingMode = "roundHalfUp"
	RoundHalfEven RoundingMode = "roundHalfEven"
	RoundDown     RoundingMode = "roundDown"
)

// RemainderPolicy decides which participants absorb the post-rounding
// residual so the breakdown reconciles exactly to the grand total.
type RemainderPolicy string

const (
	// RemainderToLargestShare assigns residual units to the participants with
	// the largest raw totals first.
	RemainderToLargestShare RemainderPolicy = "largestShare"

	// RemainderToSmallestShare assigns residual units to the participants
	// with the smallest raw totals first.
	RemainderToSmallestShare RemainderPolicy = "smallestShare"

	// RemainderToPayer assigns the entire residual to the expense's payer.
	RemainderToPayer RemainderPolicy = "payer"
)

// RoundingConfig describes the currency precision and reconciliation policy
// for one calculation.
type RoundingConfig struct {
	// Precision is the smallest currency unit, e.g. 0.01 for USD, 1 for JPY,
	// 0.001 for BHD. Supplied by a currency metadata provider; the engine
	// treats it as opaque.
	Precision decimal.Decimal `json:"precision"`

	Mode RoundingMode `json:"mode"`

	DistributeRemainderTo RemainderPolicy `json:"distributeRemainderTo"`
}

// AllocationRule bundles the defaults that steer extra allocation.
type AllocationRule struct {
	// PercentBase is the default base for percent extras that do not name one.
	PercentBase PercentBase `json:"percentBase"`

	AbsoluteSplit AbsoluteSplit `json:"absoluteSplit"`

	Rounding RoundingConfig `json:"rounding"`
}
