package service

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/calculator"
	"github.com/taihartman/splitledger/internal/currency"
	"github.com/taihartman/splitledger/internal/models"
	"github.com/taihartman/splitledger/internal/storage"
)

// SettlementService exposes the settlement views for a trip plus CRUD for
// recorded payments. All numbers are recomputed from the expense history on
// every request; nothing here is cached or stored.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// RegisterRoutes attaches the settlement endpoints to the router.
func (s *SettlementService) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/trips/{tripID}/settlement", s.GetSettlementView).Methods(http.MethodGet)
	r.HandleFunc("/api/trips/{tripID}/settlements", s.RecordSettlement).Methods(http.MethodPost)
	r.HandleFunc("/api/trips/{tripID}/settlements", s.ListSettlements).Methods(http.MethodGet)
	r.HandleFunc("/api/settlements/{settlementID}", s.DeleteSettlement).Methods(http.MethodDelete)
}

// settlementView is the per-currency settlement state of a trip.
//
// Transfers is the minimal payment plan; PairwiseTransfers keeps the exact
// per-pair net debts for drill-down ("why do I owe this person this amount").
// The two answer different questions and are deliberately both exposed.
type settlementView struct {
	Currency          string                           `json:"currency"`
	Summaries         map[string]*models.PersonSummary `json:"summaries"`
	Transfers         []models.Transfer                `json:"transfers"`
	PairwiseTransfers []models.Transfer                `json:"pairwiseTransfers"`
}

type settlementViewResponse struct {
	TripID string           `json:"tripId"`
	Views  []settlementView `json:"views"`
}

// GetSettlementView recomputes summaries and transfers for a trip. With a
// ?currency=XXX query it returns that currency only; otherwise one view per
// currency present, each computed in isolation.
func (s *SettlementService) GetSettlementView(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripID"]

	expenses, err := s.store.ListExpensesByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	settlements, err := s.store.ListSettlementsByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}

	codes := []string{r.URL.Query().Get("currency")}
	if codes[0] == "" {
		codes = currenciesOf(expenses, settlements)
	}

	resp := settlementViewResponse{TripID: tripID, Views: []settlementView{}}
	for _, code := range codes {
		view, err := buildSettlementView(expenses, derefSettlements(settlements), code)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Views = append(resp.Views, view)
	}
	writeJSON(w, http.StatusOK, resp)
}

func buildSettlementView(expenses []*models.Expense, settlements []models.Settlement, code string) (settlementView, error) {
	precision := currency.Precision(code)
	flat := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		flat = append(flat, *e)
	}

	summaries, err := calculator.CalculatePersonSummaries(flat, settlements, code, precision)
	if err != nil {
		return settlementView{}, err
	}
	if !calculator.ValidateBalances(summaries, precision) {
		return settlementView{}, calculator.InvariantError{Msg: "net balances for " + code + " do not sum to zero"}
	}

	pairwise, err := calculator.CalculatePairwiseNetTransfers(flat, settlements, code, precision)
	if err != nil {
		return settlementView{}, err
	}

	return settlementView{
		Currency:          code,
		Summaries:         summaries,
		Transfers:         calculator.MinimizeTransfers(calculator.NetBalances(summaries), code, precision),
		PairwiseTransfers: pairwise,
	}, nil
}

type recordSettlementRequest struct {
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

// RecordSettlement stores a real-world payment between two trip members.
func (s *SettlementService) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripID"]

	var req recordSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.FromUserID == "" || req.ToUserID == "" {
		writeError(w, calculator.ValidationError{Msg: "settlement requires both a sender and a receiver"})
		return
	}
	if req.FromUserID == req.ToUserID {
		writeError(w, calculator.ValidationError{Msg: "settlement sender and receiver must differ"})
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, calculator.ValidationError{Msg: "settlement amount must be positive"})
		return
	}
	if req.Currency == "" {
		writeError(w, calculator.ValidationError{Msg: "settlement requires a currency"})
		return
	}

	settlement := &models.Settlement{
		TripID:     tripID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Currency:   req.Currency,
		Amount:     req.Amount,
		Note:       req.Note,
	}
	if err := s.store.CreateSettlement(r.Context(), settlement); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

type listSettlementsResponse struct {
	Settlements []*models.Settlement `json:"settlements"`
}

// ListSettlements returns a trip's recorded payments, newest first.
func (s *SettlementService) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.store.ListSettlementsByTrip(r.Context(), mux.Vars(r)["tripID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listSettlementsResponse{Settlements: settlements})
}

// DeleteSettlement removes a recorded payment.
func (s *SettlementService) DeleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSettlement(r.Context(), mux.Vars(r)["settlementID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// currenciesOf lists every currency present in a trip's history, sorted.
func currenciesOf(expenses []*models.Expense, settlements []*models.Settlement) []string {
	seen := make(map[string]bool)
	for _, e := range expenses {
		seen[e.Currency] = true
	}
	for _, st := range settlements {
		seen[st.Currency] = true
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func derefSettlements(settlements []*models.Settlement) []models.Settlement {
	out := make([]models.Settlement, 0, len(settlements))
	for _, st := range settlements {
		out = append(out, *st)
	}
	return out
}
