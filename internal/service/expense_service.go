package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/calculator"
	"github.com/taihartman/splitledger/internal/currency"
	"github.com/taihartman/splitledger/internal/models"
	"github.com/taihartman/splitledger/internal/storage"
)

// ExpenseService exposes trip and expense endpoints: pure bill calculation
// previews, expense CRUD, and trip CRUD.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// RegisterRoutes attaches the expense endpoints to the router.
func (s *ExpenseService) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/expenses/calculate", s.CalculateBill).Methods(http.MethodPost)
	r.HandleFunc("/api/trips", s.CreateTrip).Methods(http.MethodPost)
	r.HandleFunc("/api/trips/{tripID}", s.GetTrip).Methods(http.MethodGet)
	r.HandleFunc("/api/trips/{tripID}/expenses", s.CreateExpense).Methods(http.MethodPost)
	r.HandleFunc("/api/trips/{tripID}/expenses", s.ListExpenses).Methods(http.MethodGet)
	r.HandleFunc("/api/expenses/{expenseID}", s.GetExpense).Methods(http.MethodGet)
	r.HandleFunc("/api/expenses/{expenseID}", s.DeleteExpense).Methods(http.MethodDelete)
}

type calculateBillRequest struct {
	Items    []models.LineItem      `json:"items"`
	Extras   models.Extras          `json:"extras"`
	Rule     *models.AllocationRule `json:"rule,omitempty"`
	Currency string                 `json:"currency"`
	PayerID  string                 `json:"payerId,omitempty"`
}

type calculateBillResponse struct {
	Breakdown          map[string]*models.ParticipantBreakdown `json:"breakdown"`
	ParticipantAmounts map[string]decimal.Decimal              `json:"participantAmounts"`
	GrandTotal         decimal.Decimal                         `json:"grandTotal"`
	Warnings           []string                                `json:"warnings,omitempty"`
}

// CalculateBill runs the itemized calculator without persisting anything,
// for live preview while a bill is being entered.
func (s *ExpenseService) CalculateBill(w http.ResponseWriter, r *http.Request) {
	var req calculateBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rule := normalizeRule(req.Rule, req.Currency)
	breakdown, err := calculator.Calculate(req.Items, req.Extras, rule, req.PayerID)
	if err != nil {
		writeError(w, err)
		return
	}

	warnings := percentWarnings(req.Extras)
	for _, warning := range warnings {
		slog.Warn("Suspicious bill input", "warning", warning)
	}

	writeJSON(w, http.StatusOK, calculateBillResponse{
		Breakdown:          breakdown,
		ParticipantAmounts: calculator.ParticipantAmounts(breakdown),
		GrandTotal:         calculator.GrandTotal(breakdown),
		Warnings:           warnings,
	})
}

type createExpenseRequest struct {
	Description  string                     `json:"description"`
	Currency     string                     `json:"currency"`
	Amount       decimal.Decimal            `json:"amount"`
	PayerID      string                     `json:"payerId"`
	Category     string                     `json:"category,omitempty"`
	SplitType    models.SplitType           `json:"splitType"`
	Participants []string                   `json:"participants,omitempty"`
	Weights      map[string]decimal.Decimal `json:"weights,omitempty"`
	Items        []models.LineItem          `json:"items,omitempty"`
	Extras       *models.Extras             `json:"extras,omitempty"`
	Rule         *models.AllocationRule     `json:"rule,omitempty"`
}

// CreateExpense validates and persists a new expense. Itemized splits run
// through the calculator here so the stored expense carries its breakdown
// and per-participant amounts forever; edits create a new expense.
func (s *ExpenseService) CreateExpense(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripID"]

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.PayerID == "" {
		writeError(w, calculator.ValidationError{Msg: "expense requires a payer"})
		return
	}

	code := req.Currency
	if code == "" {
		trip, err := s.store.GetTrip(r.Context(), tripID)
		if err != nil || trip.BaseCurrency == "" {
			writeError(w, calculator.ValidationError{Msg: "expense requires a currency"})
			return
		}
		code = trip.BaseCurrency
	}

	expense := &models.Expense{
		TripID:       tripID,
		Description:  req.Description,
		Currency:     code,
		Amount:       req.Amount,
		PayerID:      req.PayerID,
		Category:     req.Category,
		SplitType:    req.SplitType,
		Participants: req.Participants,
		Weights:      req.Weights,
	}

	switch req.SplitType {
	case models.SplitItemized:
		rule := normalizeRule(req.Rule, code)
		extras := models.Extras{}
		if req.Extras != nil {
			extras = *req.Extras
		}
		breakdown, err := calculator.Calculate(req.Items, extras, rule, req.PayerID)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, warning := range percentWarnings(extras) {
			slog.Warn("Suspicious bill input", "trip_id", tripID, "warning", warning)
		}
		total := calculator.GrandTotal(breakdown)
		if !req.Amount.IsZero() && !req.Amount.Equal(total) {
			writeError(w, calculator.ValidationError{
				Msg: fmt.Sprintf("declared amount %s does not match computed total %s", req.Amount, total),
			})
			return
		}
		expense.Amount = total
		expense.Items = req.Items
		expense.Extras = req.Extras
		expense.Rule = &rule
		expense.Breakdown = breakdown
		expense.ParticipantAmounts = calculator.ParticipantAmounts(breakdown)
		expense.Participants = nil

	case models.SplitEqual, models.SplitWeighted:
		if !req.Amount.IsPositive() {
			writeError(w, calculator.ValidationError{Msg: "expense amount must be positive"})
			return
		}
		// Dry-run the share computation so a bad split is rejected now, not
		// at settlement time.
		if _, err := calculator.ExpenseShares(*expense, currency.Precision(code)); err != nil {
			writeError(w, err)
			return
		}

	default:
		writeError(w, calculator.ValidationError{Msg: fmt.Sprintf("unknown split type %q", req.SplitType)})
		return
	}

	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"trip_id", tripID,
		"currency", expense.Currency,
		"amount", expense.Amount,
		"split_type", expense.SplitType,
	)
	writeJSON(w, http.StatusCreated, expense)
}

// GetExpense returns one expense with its stored breakdown.
func (s *ExpenseService) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["expenseID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

type listExpensesResponse struct {
	Expenses []*models.Expense `json:"expenses"`
}

// ListExpenses returns a trip's expenses, newest first.
func (s *ExpenseService) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpensesByTrip(r.Context(), mux.Vars(r)["tripID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listExpensesResponse{Expenses: expenses})
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExpense(r.Context(), mux.Vars(r)["expenseID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createTripRequest struct {
	Name         string   `json:"name"`
	Members      []string `json:"members,omitempty"`
	BaseCurrency string   `json:"baseCurrency,omitempty"`
}

// CreateTrip persists a new trip.
func (s *ExpenseService) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, calculator.ValidationError{Msg: "trip name must not be empty"})
		return
	}

	trip := &models.Trip{
		Name:         req.Name,
		Members:      req.Members,
		BaseCurrency: req.BaseCurrency,
	}
	if err := s.store.CreateTrip(r.Context(), trip); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("Trip created", "trip_id", trip.ID, "name", trip.Name)
	writeJSON(w, http.StatusCreated, trip)
}

// GetTrip returns one trip with its members.
func (s *ExpenseService) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.store.GetTrip(r.Context(), mux.Vars(r)["tripID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// normalizeRule fills in the parts of an allocation rule the caller left
// unset: currency precision, half-up rounding, remainder to the largest
// share, pre-tax percent base, proportional absolute split.
func normalizeRule(rule *models.AllocationRule, code string) models.AllocationRule {
	out := models.AllocationRule{}
	if rule != nil {
		out = *rule
	}
	if out.PercentBase == "" {
		out.PercentBase = models.BasePreTaxItems
	}
	if out.AbsoluteSplit == "" {
		out.AbsoluteSplit = models.SplitProportional
	}
	if out.Rounding.Precision.IsZero() {
		out.Rounding.Precision = currency.Precision(code)
	}
	if out.Rounding.Mode == "" {
		out.Rounding.Mode = models.RoundHalfUp
	}
	if out.Rounding.DistributeRemainderTo == "" {
		out.Rounding.DistributeRemainderTo = models.RemainderToLargestShare
	}
	return out
}

var percentWarningThreshold = decimal.NewFromInt(100)

// percentWarnings flags percentage extras above 100%. The calculator accepts
// them; the caller is the one who should raise an eyebrow.
func percentWarnings(extras models.Extras) []string {
	var warnings []string
	check := func(label string, e *models.Extra) {
		if e != nil && e.Type == models.ExtraPercent && e.Value.GreaterThan(percentWarningThreshold) {
			warnings = append(warnings, fmt.Sprintf("%s of %s%% is unusually high", label, e.Value))
		}
	}
	check("tax", extras.Tax)
	check("tip", extras.Tip)
	for i := range extras.Fees {
		check("fee", &extras.Fees[i])
	}
	for i := range extras.Discounts {
		check("discount", &extras.Discounts[i])
	}
	return warnings
}
