package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// roundToStep rounds d to the nearest multiple of step using the given mode.
// step is the currency's minimal unit (e.g. 0.01, 1, 0.001).
func roundToStep(d, step decimal.Decimal, mode models.RoundingMode) decimal.Decimal {
	q := d.Div(step)
	switch mode {
	case models.RoundHalfEven:
		q = q.RoundBank(0)
	case models.RoundDown:
		q = q.RoundDown(0)
	default: // models.RoundHalfUp
		q = q.Round(0)
	}
	return q.Mul(step)
}

// byRawTotal orders participant IDs by their raw (unrounded) totals, with
// ties broken by ID so remainder distribution is deterministic.
func byRawTotal(ids []string, raw map[string]decimal.Decimal, largestFirst bool) []string {
	ordered := make([]string, len(ids))
	copy(ordered, ids)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := raw[ordered[i]], raw[ordered[j]]
		if !a.Equal(b) {
			if largestFirst {
				return a.GreaterThan(b)
			}
			return a.LessThan(b)
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}

// distributeResidual assigns the post-rounding residual to participants one
// minimal unit at a time and returns the adjusted totals. The residual must
// be an exact multiple of step; anything else is an engine defect.
func distributeResidual(
	rounded map[string]decimal.Decimal,
	raw map[string]decimal.Decimal,
	residual, step decimal.Decimal,
	policy models.RemainderPolicy,
	payerID string,
) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(rounded))
	ids := make([]string, 0, len(rounded))
	for id, v := range rounded {
		out[id] = v
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if residual.IsZero() {
		return out, nil
	}

	units := residual.Div(step)
	if !units.Equal(units.Truncate(0)) {
		return nil, invariantf("residual %s is not a whole number of %s units", residual, step)
	}

	if policy == models.RemainderToPayer {
		if _, ok := out[payerID]; !ok {
			return nil, invariantf("payer %q has no share to absorb residual %s", payerID, residual)
		}
		out[payerID] = out[payerID].Add(residual)
		return out, nil
	}

	unit := step
	if residual.IsNegative() {
		unit = step.Neg()
	}
	n := units.Abs().IntPart()

	ordered := byRawTotal(ids, raw, policy == models.RemainderToLargestShare)
	for i := int64(0); i < n; i++ {
		id := ordered[i%int64(len(ordered))]
		out[id] = out[id].Add(unit)
	}
	return out, nil
}
