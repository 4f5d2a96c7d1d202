package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
)

// Calculate computes each participant's fully allocated share of an itemized
// bill. Extras are evaluated in a fixed pipeline (discounts, tax, fees, tip),
// each percentage resolving against the running subtotal its base names, then
// per-person totals are rounded to the currency precision and the residual is
// distributed so the breakdown reconciles exactly to the grand total.
//
// The payer is only consulted when the rounding config sends the residual to
// the payer. Calculation is pure: identical inputs always produce identical
// outputs.
func Calculate(items []models.LineItem, extras models.Extras, rule models.AllocationRule, payerID string) (map[string]*models.ParticipantBreakdown, error) {
	if err := validateBill(items, extras, rule, payerID); err != nil {
		return nil, err
	}

	// Per-item allocation: accumulate item subtotals and audit contributions.
	perItems := make(map[string]decimal.Decimal)
	perTaxable := make(map[string]decimal.Decimal)
	perServiceable := make(map[string]decimal.Decimal)
	contributions := make(map[string][]models.ItemContribution)

	preTaxItems := decimal.Zero
	taxableItems := decimal.Zero
	serviceableItems := decimal.Zero

	for _, item := range items {
		total := item.ItemTotal()
		preTaxItems = preTaxItems.Add(total)
		if item.Taxable {
			taxableItems = taxableItems.Add(total)
		}
		if item.ServiceChargeable {
			serviceableItems = serviceableItems.Add(total)
		}

		shares := itemShares(item)
		for _, userID := range sortedKeys(shares) {
			frac := shares[userID]
			amount := total.Mul(frac)
			perItems[userID] = perItems[userID].Add(amount)
			if item.Taxable {
				perTaxable[userID] = perTaxable[userID].Add(amount)
			}
			if item.ServiceChargeable {
				perServiceable[userID] = perServiceable[userID].Add(amount)
			}
			contributions[userID] = append(contributions[userID], models.ItemContribution{
				ItemID:        item.ID,
				ItemName:      item.Name,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				AssignedShare: frac,
			})
		}
	}

	participants := sortedKeys(perItems)

	if rule.Rounding.DistributeRemainderTo == models.RemainderToPayer {
		if _, ok := perItems[payerID]; !ok {
			return nil, validationf("payer %q is not among the assigned participants", payerID)
		}
	}

	// Running subtotals available to percent extras. Later pipeline stages
	// are added as they are computed; referencing one early is an error.
	avail := map[models.PercentBase]decimal.Decimal{
		models.BasePreTaxItems:  preTaxItems,
		models.BaseTaxableItems: taxableItems,
	}

	extrasAlloc := make(map[string]map[models.ExtraKind]decimal.Decimal, len(participants))
	for _, id := range participants {
		extrasAlloc[id] = make(map[models.ExtraKind]decimal.Decimal)
	}
	addAlloc := func(kind models.ExtraKind, alloc map[string]decimal.Decimal) {
		for id, v := range alloc {
			extrasAlloc[id][kind] = extrasAlloc[id][kind].Add(v)
		}
	}

	// Stage 1: discounts (negative allocations).
	discountTotal := decimal.Zero
	for _, d := range extras.Discounts {
		amount, err := extraAmount(d, avail, rule.PercentBase)
		if err != nil {
			return nil, err
		}
		alloc := allocateExtra(amount.Neg(), participants, rule.AbsoluteSplit, perItems, preTaxItems)
		addAlloc(models.KindDiscount, alloc)
		discountTotal = discountTotal.Add(amount)
	}
	postDiscount := preTaxItems.Sub(discountTotal)
	avail[models.BasePostDiscount] = postDiscount

	// Stage 2: tax. A tax restricted to taxable items is also allocated in
	// proportion to each participant's taxable subtotal.
	taxTotal := decimal.Zero
	if extras.Tax != nil {
		amount, err := extraAmount(*extras.Tax, avail, rule.PercentBase)
		if err != nil {
			return nil, err
		}
		weights, weightTotal := perItems, preTaxItems
		if taxBase(*extras.Tax, rule) == models.BaseTaxableItems && taxableItems.IsPositive() {
			weights, weightTotal = perTaxable, taxableItems
		}
		alloc := allocateExtra(amount, participants, rule.AbsoluteSplit, weights, weightTotal)
		addAlloc(models.KindTax, alloc)
		taxTotal = amount
	}
	postTax := postDiscount.Add(taxTotal)
	avail[models.BasePostTax] = postTax

	// Stage 3: fees. Service-chargeable items play the same role for fees
	// that taxable items play for tax.
	feeWeights, feeWeightTotal := perItems, preTaxItems
	if serviceableItems.IsPositive() {
		feeWeights, feeWeightTotal = perServiceable, serviceableItems
	}
	feeTotal := decimal.Zero
	for _, f := range extras.Fees {
		amount, err := extraAmount(f, avail, rule.PercentBase)
		if err != nil {
			return nil, err
		}
		alloc := allocateExtra(amount, participants, rule.AbsoluteSplit, feeWeights, feeWeightTotal)
		addAlloc(models.KindFee, alloc)
		feeTotal = feeTotal.Add(amount)
	}
	postFees := postTax.Add(feeTotal)
	avail[models.BasePostFees] = postFees

	// Stage 4: tip.
	tipTotal := decimal.Zero
	if extras.Tip != nil {
		amount, err := extraAmount(*extras.Tip, avail, rule.PercentBase)
		if err != nil {
			return nil, err
		}
		alloc := allocateExtra(amount, participants, rule.AbsoluteSplit, perItems, preTaxItems)
		addAlloc(models.KindTip, alloc)
		tipTotal = amount
	}
	grandTotal := postFees.Add(tipTotal)

	// Round per-person totals and reconcile the residual so the totals sum
	// exactly to the rounded grand total.
	step := rule.Rounding.Precision
	mode := rule.Rounding.Mode
	raw := make(map[string]decimal.Decimal, len(participants))
	rounded := make(map[string]decimal.Decimal, len(participants))
	roundedSum := decimal.Zero
	for _, id := range participants {
		r := perItems[id]
		for _, kind := range sortedKinds(extrasAlloc[id]) {
			r = r.Add(extrasAlloc[id][kind])
		}
		raw[id] = r
		rounded[id] = roundToStep(r, step, mode)
		roundedSum = roundedSum.Add(rounded[id])
	}

	grandRounded := roundToStep(grandTotal, step, mode)
	residual := grandRounded.Sub(roundedSum)

	finals, err := distributeResidual(rounded, raw, residual, step, rule.Rounding.DistributeRemainderTo, payerID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*models.ParticipantBreakdown, len(participants))
	finalSum := decimal.Zero
	for _, id := range participants {
		total := finals[id]
		finalSum = finalSum.Add(total)
		result[id] = &models.ParticipantBreakdown{
			UserID:            id,
			ItemsSubtotal:     perItems[id],
			ExtrasAllocated:   extrasAlloc[id],
			RoundedAdjustment: total.Sub(raw[id]),
			Total:             total,
			Items:             contributions[id],
		}
	}
	if !finalSum.Equal(grandRounded) {
		return nil, invariantf("participant totals %s do not reconcile to grand total %s", finalSum, grandRounded)
	}

	return result, nil
}

// ParticipantAmounts flattens a breakdown into the per-person amount map that
// is persisted alongside an itemized expense.
func ParticipantAmounts(breakdown map[string]*models.ParticipantBreakdown) map[string]decimal.Decimal {
	amounts := make(map[string]decimal.Decimal, len(breakdown))
	for id, b := range breakdown {
		amounts[id] = b.Total
	}
	return amounts
}

// GrandTotal sums the participant totals of a breakdown.
func GrandTotal(breakdown map[string]*models.ParticipantBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, b := range breakdown {
		total = total.Add(b.Total)
	}
	return total
}

// itemShares returns each assigned user's fraction of the item, normalized to
// sum to 1. Validation has already guaranteed a usable assignment.
func itemShares(item models.LineItem) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(item.Assignment.Users))
	if item.Assignment.Mode == models.AssignCustom {
		sum := decimal.Zero
		for _, userID := range item.Assignment.Users {
			sum = sum.Add(item.Assignment.Shares[userID])
		}
		for _, userID := range item.Assignment.Users {
			shares[userID] = item.Assignment.Shares[userID].Div(sum)
		}
		return shares
	}
	frac := one.Div(decimal.NewFromInt(int64(len(item.Assignment.Users))))
	for _, userID := range item.Assignment.Users {
		shares[userID] = frac
	}
	return shares
}

// extraAmount resolves an extra to its absolute total. Percent extras read
// the running subtotal named by their base (or the rule default); amount
// extras use their value directly.
func extraAmount(e models.Extra, avail map[models.PercentBase]decimal.Decimal, defaultBase models.PercentBase) (decimal.Decimal, error) {
	switch e.Type {
	case models.ExtraAmount:
		return e.Value, nil
	case models.ExtraPercent:
		base := e.Base
		if base == "" {
			base = defaultBase
		}
		subtotal, ok := avail[base]
		if !ok {
			return decimal.Zero, validationf("percent base %q is not computed yet at this pipeline stage", base)
		}
		return subtotal.Mul(e.Value).Div(hundred), nil
	default:
		return decimal.Zero, validationf("unknown extra type %q", e.Type)
	}
}

// allocateExtra divides an extra's total across participants. Proportional
// allocation falls back to an even split when the weight total is zero (all
// items free), so extras are never silently dropped.
func allocateExtra(total decimal.Decimal, participants []string, split models.AbsoluteSplit, weights map[string]decimal.Decimal, weightTotal decimal.Decimal) map[string]decimal.Decimal {
	alloc := make(map[string]decimal.Decimal, len(participants))
	if split == models.SplitEvenAcrossPeople || weightTotal.IsZero() {
		each := total.Div(decimal.NewFromInt(int64(len(participants))))
		for _, id := range participants {
			alloc[id] = each
		}
		return alloc
	}
	for _, id := range participants {
		alloc[id] = total.Mul(weights[id]).Div(weightTotal)
	}
	return alloc
}

func taxBase(tax models.Extra, rule models.AllocationRule) models.PercentBase {
	if tax.Type == models.ExtraPercent && tax.Base != "" {
		return tax.Base
	}
	if tax.Type == models.ExtraPercent {
		return rule.PercentBase
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKinds(m map[models.ExtraKind]decimal.Decimal) []models.ExtraKind {
	kinds := make([]models.ExtraKind, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
