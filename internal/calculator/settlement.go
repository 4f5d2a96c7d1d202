package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
)

// CalculatePersonSummaries aggregates a trip's expenses and recorded
// settlements into per-person summaries for a single currency.
//
// For each expense the payer's TotalPaid grows by the full amount and every
// participant's TotalOwed grows by their share. A recorded settlement counts
// as paid for the sender and owed for the receiver, which is how it cancels
// prior debt. Net balances across all participants sum to zero by
// construction.
//
// When currencyFilter is empty the expense set must be single-currency;
// summaries are never mixed across currencies. An empty or fully filtered-out
// expense set yields an empty map, not an error.
func CalculatePersonSummaries(expenses []models.Expense, settlements []models.Settlement, currencyFilter string, precision decimal.Decimal) (map[string]*models.PersonSummary, error) {
	expenses, settlements, _, err := filterCurrency(expenses, settlements, currencyFilter)
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]*models.PersonSummary)
	get := func(userID string) *models.PersonSummary {
		s, ok := summaries[userID]
		if !ok {
			s = &models.PersonSummary{UserID: userID}
			summaries[userID] = s
		}
		return s
	}

	for _, e := range expenses {
		if e.PayerID == "" {
			return nil, validationf("expense %q has no payer", e.ID)
		}
		shares, err := ExpenseShares(e, precision)
		if err != nil {
			return nil, err
		}

		payer := get(e.PayerID)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)

		for _, userID := range sortedKeys(shares) {
			share := shares[userID]
			s := get(userID)
			s.TotalOwed = s.TotalOwed.Add(share)
			if e.Category != "" {
				if s.CategoryBreakdown == nil {
					s.CategoryBreakdown = make(map[string]decimal.Decimal)
				}
				s.CategoryBreakdown[e.Category] = s.CategoryBreakdown[e.Category].Add(share)
			}
		}
	}

	for _, st := range settlements {
		from := get(st.FromUserID)
		from.TotalPaid = from.TotalPaid.Add(st.Amount)
		to := get(st.ToUserID)
		to.TotalOwed = to.TotalOwed.Add(st.Amount)
	}

	for _, s := range summaries {
		s.Net = s.TotalPaid.Sub(s.TotalOwed)
	}
	return summaries, nil
}

// CalculatePairwiseNetTransfers nets the debt between every unordered pair of
// participants across all expenses in one currency and emits one transfer per
// pair with a nonzero net. The result is exact per pair but not minimal in
// transfer count; it answers "why do I owe this person this amount".
func CalculatePairwiseNetTransfers(expenses []models.Expense, settlements []models.Settlement, currencyFilter string, precision decimal.Decimal) ([]models.Transfer, error) {
	expenses, settlements, currency, err := filterCurrency(expenses, settlements, currencyFilter)
	if err != nil {
		return nil, err
	}

	// debt[a][b] is what a owes b before netting the opposite direction.
	debt := make(map[string]map[string]decimal.Decimal)
	owe := func(from, to string, amount decimal.Decimal) {
		if from == to || amount.IsZero() {
			return
		}
		if debt[from] == nil {
			debt[from] = make(map[string]decimal.Decimal)
		}
		debt[from][to] = debt[from][to].Add(amount)
	}

	users := make(map[string]bool)
	for _, e := range expenses {
		if e.PayerID == "" {
			return nil, validationf("expense %q has no payer", e.ID)
		}
		shares, err := ExpenseShares(e, precision)
		if err != nil {
			return nil, err
		}
		users[e.PayerID] = true
		for userID, share := range shares {
			users[userID] = true
			owe(userID, e.PayerID, share)
		}
	}
	// A recorded payment from A to B cancels debt in the A->B direction.
	for _, st := range settlements {
		users[st.FromUserID] = true
		users[st.ToUserID] = true
		owe(st.ToUserID, st.FromUserID, st.Amount)
	}

	ids := sortedKeys(users)
	var transfers []models.Transfer
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			net := debt[a][b].Sub(debt[b][a])
			switch {
			case net.IsPositive():
				transfers = append(transfers, models.Transfer{FromUserID: a, ToUserID: b, Currency: currency, Amount: net})
			case net.IsNegative():
				transfers = append(transfers, models.Transfer{FromUserID: b, ToUserID: a, Currency: currency, Amount: net.Neg()})
			}
		}
	}
	return transfers, nil
}

// MinimizeTransfers reduces a net-balance map to the smallest set of
// transfers that zeroes every balance: repeatedly match the largest creditor
// with the largest debtor and settle the smaller of the two amounts. Ties are
// broken by participant ID so the result is deterministic.
func MinimizeTransfers(net map[string]decimal.Decimal, currency string, precision decimal.Decimal) []models.Transfer {
	balance := make(map[string]decimal.Decimal, len(net))
	for id, v := range net {
		balance[id] = v
	}

	var transfers []models.Transfer
	for {
		creditor, credit := pickExtreme(balance, true)
		debtor, debit := pickExtreme(balance, false)
		if creditor == "" || debtor == "" {
			break
		}
		amount := decimal.Min(credit, debit.Neg())
		if amount.LessThan(precision) {
			break
		}
		transfers = append(transfers, models.Transfer{
			FromUserID: debtor,
			ToUserID:   creditor,
			Currency:   currency,
			Amount:     amount,
		})
		balance[creditor] = balance[creditor].Sub(amount)
		balance[debtor] = balance[debtor].Add(amount)
	}
	return transfers
}

// NetBalances extracts the per-person net map consumed by MinimizeTransfers.
func NetBalances(summaries map[string]*models.PersonSummary) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(summaries))
	for id, s := range summaries {
		net[id] = s.Net
	}
	return net
}

// ValidateBalances reports whether the conservation invariant holds: net
// balances summing to zero within one minimal currency unit. A false result
// indicates an upstream allocation bug.
func ValidateBalances(summaries map[string]*models.PersonSummary, precision decimal.Decimal) bool {
	sum := decimal.Zero
	for _, s := range summaries {
		sum = sum.Add(s.Net)
	}
	return !sum.Abs().GreaterThan(precision)
}

// ExpenseShares returns each participant's share of one expense, rounded to
// the currency precision with a largest-remainder pass so the shares sum
// exactly to the (rounded) expense amount.
func ExpenseShares(e models.Expense, precision decimal.Decimal) (map[string]decimal.Decimal, error) {
	if !precision.IsPositive() {
		return nil, validationf("precision must be positive, got %s", precision)
	}

	var weights map[string]decimal.Decimal
	switch e.SplitType {
	case models.SplitItemized:
		if len(e.ParticipantAmounts) == 0 {
			return nil, validationf("itemized expense %q has no participant amounts", e.ID)
		}
		shares := make(map[string]decimal.Decimal, len(e.ParticipantAmounts))
		for id, v := range e.ParticipantAmounts {
			shares[id] = v
		}
		return shares, nil
	case models.SplitEqual:
		if len(e.Participants) == 0 {
			return nil, validationf("expense %q has no participants", e.ID)
		}
		weights = make(map[string]decimal.Decimal, len(e.Participants))
		for _, id := range e.Participants {
			if _, dup := weights[id]; dup {
				return nil, validationf("expense %q lists participant %q twice", e.ID, id)
			}
			weights[id] = one
		}
	case models.SplitWeighted:
		if len(e.Weights) == 0 {
			return nil, validationf("weighted expense %q has no weights", e.ID)
		}
		weights = e.Weights
	default:
		return nil, validationf("expense %q has unknown split type %q", e.ID, e.SplitType)
	}

	weightTotal := decimal.Zero
	for id, w := range weights {
		if w.IsNegative() {
			return nil, validationf("expense %q: negative weight for %q", e.ID, id)
		}
		weightTotal = weightTotal.Add(w)
	}
	if !weightTotal.IsPositive() {
		return nil, validationf("expense %q: weights must sum to a positive value", e.ID)
	}

	return largestRemainderSplit(e.Amount, weights, weightTotal, precision), nil
}

// largestRemainderSplit divides amount by weight in whole currency units,
// then hands the leftover units to the participants with the largest
// fractional remainders (ID ascending on ties).
func largestRemainderSplit(amount decimal.Decimal, weights map[string]decimal.Decimal, weightTotal, precision decimal.Decimal) map[string]decimal.Decimal {
	ids := sortedKeys(weights)
	totalUnits := amount.Div(precision).Round(0)

	type remainder struct {
		id   string
		frac decimal.Decimal
	}
	units := make(map[string]decimal.Decimal, len(ids))
	remainders := make([]remainder, 0, len(ids))
	floorSum := decimal.Zero
	for _, id := range ids {
		rawUnits := totalUnits.Mul(weights[id]).Div(weightTotal)
		floor := rawUnits.Floor()
		units[id] = floor
		floorSum = floorSum.Add(floor)
		remainders = append(remainders, remainder{id: id, frac: rawUnits.Sub(floor)})
	}

	sort.SliceStable(remainders, func(i, j int) bool {
		if !remainders[i].frac.Equal(remainders[j].frac) {
			return remainders[i].frac.GreaterThan(remainders[j].frac)
		}
		return remainders[i].id < remainders[j].id
	})

	leftover := totalUnits.Sub(floorSum).IntPart()
	for i := int64(0); i < leftover; i++ {
		id := remainders[i%int64(len(remainders))].id
		units[id] = units[id].Add(one)
	}

	shares := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		shares[id] = units[id].Mul(precision)
	}
	return shares
}

// pickExtreme returns the participant with the largest positive balance
// (creditor) or the most negative balance (debtor), breaking ties by ID.
func pickExtreme(balance map[string]decimal.Decimal, creditor bool) (string, decimal.Decimal) {
	bestID := ""
	best := decimal.Zero
	for _, id := range sortedKeys(balance) {
		v := balance[id]
		if creditor && v.GreaterThan(best) {
			bestID, best = id, v
		}
		if !creditor && v.LessThan(best) {
			bestID, best = id, v
		}
	}
	return bestID, best
}

// filterCurrency narrows expenses and settlements to one currency. With an
// empty filter the inputs must already be single-currency.
func filterCurrency(expenses []models.Expense, settlements []models.Settlement, filter string) ([]models.Expense, []models.Settlement, string, error) {
	if filter == "" {
		for _, e := range expenses {
			switch {
			case filter == "":
				filter = e.Currency
			case e.Currency != filter:
				return nil, nil, "", validationf("expense set mixes currencies %q and %q; pass a currency filter", filter, e.Currency)
			}
		}
		for _, s := range settlements {
			switch {
			case filter == "":
				filter = s.Currency
			case s.Currency != filter:
				return nil, nil, "", validationf("settlements mix currencies %q and %q; pass a currency filter", filter, s.Currency)
			}
		}
		return expenses, settlements, filter, nil
	}

	var fe []models.Expense
	for _, e := range expenses {
		if e.Currency == filter {
			fe = append(fe, e)
		}
	}
	var fs []models.Settlement
	for _, s := range settlements {
		if s.Currency == filter {
			fs = append(fs, s)
		}
	}
	return fe, fs, filter, nil
}
