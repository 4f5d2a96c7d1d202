package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
)

var validBases = map[models.PercentBase]bool{
	models.BasePreTaxItems:  true,
	models.BaseTaxableItems: true,
	models.BasePostDiscount: true,
	models.BasePostTax:      true,
	models.BasePostFees:     true,
}

// validateBill rejects malformed input before any allocation happens, so a
// failed calculation never produces a partial breakdown.
func validateBill(items []models.LineItem, extras models.Extras, rule models.AllocationRule, payerID string) error {
	if len(items) == 0 {
		return validationf("itemized split requires at least one item")
	}
	if !rule.Rounding.Precision.IsPositive() {
		return validationf("rounding precision must be positive, got %s", rule.Rounding.Precision)
	}
	switch rule.Rounding.Mode {
	case models.RoundHalfUp, models.RoundHalfEven, models.RoundDown:
	default:
		return validationf("unknown rounding mode %q", rule.Rounding.Mode)
	}
	switch rule.Rounding.DistributeRemainderTo {
	case models.RemainderToLargestShare, models.RemainderToSmallestShare:
	case models.RemainderToPayer:
		if payerID == "" {
			return validationf("remainder distribution to payer requires a payer")
		}
	default:
		return validationf("unknown remainder policy %q", rule.Rounding.DistributeRemainderTo)
	}
	switch rule.AbsoluteSplit {
	case models.SplitProportional, models.SplitEvenAcrossPeople:
	default:
		return validationf("unknown absolute split %q", rule.AbsoluteSplit)
	}
	if rule.PercentBase != "" && !validBases[rule.PercentBase] {
		return validationf("unknown percent base %q", rule.PercentBase)
	}

	for i, item := range items {
		if item.Name == "" {
			return validationf("item %d: name must not be empty", i+1)
		}
		if !item.Quantity.IsPositive() {
			return validationf("item %q: quantity must be positive, got %s", item.Name, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return validationf("item %q: unit price must not be negative, got %s", item.Name, item.UnitPrice)
		}
		if err := validateAssignment(item); err != nil {
			return err
		}
	}

	for _, e := range collectExtras(extras) {
		if e.Value.IsNegative() {
			return validationf("extra value must not be negative, got %s", e.Value)
		}
		if e.Type != models.ExtraPercent && e.Type != models.ExtraAmount {
			return validationf("unknown extra type %q", e.Type)
		}
		if e.Type == models.ExtraPercent {
			base := e.Base
			if base == "" {
				base = rule.PercentBase
			}
			if base == "" {
				return validationf("percent extra has no base and the allocation rule has no default")
			}
			if !validBases[base] {
				return validationf("unknown percent base %q", base)
			}
		}
	}

	return nil
}

func validateAssignment(item models.LineItem) error {
	a := item.Assignment
	if len(a.Users) == 0 {
		return validationf("item %q is not assigned to anyone", item.Name)
	}
	seen := make(map[string]bool, len(a.Users))
	for _, userID := range a.Users {
		if userID == "" {
			return validationf("item %q: empty participant id in assignment", item.Name)
		}
		if seen[userID] {
			return validationf("item %q: participant %q assigned twice", item.Name, userID)
		}
		seen[userID] = true
	}
	switch a.Mode {
	case models.AssignEven:
		return nil
	case models.AssignCustom:
		sum := decimal.Zero
		for _, userID := range a.Users {
			share := a.Shares[userID]
			if share.IsNegative() {
				return validationf("item %q: negative share for %q", item.Name, userID)
			}
			sum = sum.Add(share)
		}
		if !sum.IsPositive() {
			return validationf("item %q: custom shares must sum to a positive value", item.Name)
		}
		return nil
	default:
		return validationf("item %q: unknown assignment mode %q", item.Name, a.Mode)
	}
}

func collectExtras(extras models.Extras) []models.Extra {
	var all []models.Extra
	all = append(all, extras.Discounts...)
	if extras.Tax != nil {
		all = append(all, *extras.Tax)
	}
	all = append(all, extras.Fees...)
	if extras.Tip != nil {
		all = append(all, *extras.Tip)
	}
	return all
}
