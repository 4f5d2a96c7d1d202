package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
	"github.com/taihartman/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testTrip(t *testing.T, store *SQLiteStore) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		Name:         "Lisbon",
		Members:      []string{"alice", "bob", "charlie"},
		BaseCurrency: "EUR",
	}
	if err := store.CreateTrip(context.Background(), trip); err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	return trip
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestCreateAndGetTrip(t *testing.T) {
	store := newTestStore(t)
	trip := testTrip(t, store)

	if trip.ID == "" {
		t.Fatal("trip ID was not generated")
	}
	if trip.CreatedAt == 0 {
		t.Fatal("trip CreatedAt was not set")
	}

	got, err := store.GetTrip(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("failed to get trip: %v", err)
	}
	if got.Name != "Lisbon" || got.BaseCurrency != "EUR" {
		t.Errorf("got trip %+v", got)
	}
	if len(got.Members) != 3 || got.Members[0] != "alice" {
		t.Errorf("got members %v, want alice, bob, charlie", got.Members)
	}
}

func TestGetTripNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTrip(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	trip := testTrip(t, store)
	ctx := context.Background()

	tests := []struct {
		name    string
		expense func(t *testing.T) *models.Expense
		check   func(t *testing.T, got *models.Expense)
	}{
		{
			name: "equal split",
			expense: func(t *testing.T) *models.Expense {
				return &models.Expense{
					TripID:       trip.ID,
					Description:  "Dinner",
					Currency:     "EUR",
					Amount:       mustDecimal(t, "64.50"),
					PayerID:      "alice",
					Category:     "food",
					SplitType:    models.SplitEqual,
					Participants: []string{"alice", "bob"},
				}
			},
			check: func(t *testing.T, got *models.Expense) {
				if !got.Amount.Equal(mustDecimal(t, "64.50")) {
					t.Errorf("amount = %s, want 64.50", got.Amount)
				}
				if got.Category != "food" {
					t.Errorf("category = %q, want food", got.Category)
				}
				if len(got.Participants) != 2 {
					t.Errorf("participants = %v", got.Participants)
				}
			},
		},
		{
			name: "weighted split keeps exact weights",
			expense: func(t *testing.T) *models.Expense {
				return &models.Expense{
					TripID:      trip.ID,
					Description: "Groceries",
					Currency:    "EUR",
					Amount:      mustDecimal(t, "100.00"),
					PayerID:     "bob",
					SplitType:   models.SplitWeighted,
					Weights: map[string]decimal.Decimal{
						"alice": mustDecimal(t, "1.5"),
						"bob":   mustDecimal(t, "2.5"),
					},
				}
			},
			check: func(t *testing.T, got *models.Expense) {
				if !got.Weights["alice"].Equal(mustDecimal(t, "1.5")) {
					t.Errorf("alice weight = %s, want 1.5", got.Weights["alice"])
				}
				if !got.Weights["bob"].Equal(mustDecimal(t, "2.5")) {
					t.Errorf("bob weight = %s, want 2.5", got.Weights["bob"])
				}
				if got.Category != "" {
					t.Errorf("category = %q, want empty", got.Category)
				}
			},
		},
		{
			name: "itemized split round-trips the bill document",
			expense: func(t *testing.T) *models.Expense {
				return &models.Expense{
					TripID:      trip.ID,
					Description: "Restaurant",
					Currency:    "EUR",
					Amount:      mustDecimal(t, "16.33"),
					PayerID:     "alice",
					SplitType:   models.SplitItemized,
					Items: []models.LineItem{{
						ID:        "i1",
						Name:      "Burger",
						Quantity:  mustDecimal(t, "1"),
						UnitPrice: mustDecimal(t, "12.50"),
						Taxable:   true,
						Assignment: models.ItemAssignment{
							Mode:  models.AssignEven,
							Users: []string{"alice", "bob"},
						},
					}},
					Extras: &models.Extras{
						Tax: &models.Extra{Type: models.ExtraPercent, Value: mustDecimal(t, "8.875"), Base: models.BasePreTaxItems},
					},
					ParticipantAmounts: map[string]decimal.Decimal{
						"alice": mustDecimal(t, "8.16"),
						"bob":   mustDecimal(t, "8.17"),
					},
					Breakdown: map[string]*models.ParticipantBreakdown{
						"alice": {
							UserID:        "alice",
							ItemsSubtotal: mustDecimal(t, "6.25"),
							Total:         mustDecimal(t, "8.16"),
						},
					},
				}
			},
			check: func(t *testing.T, got *models.Expense) {
				if len(got.Items) != 1 || got.Items[0].Name != "Burger" {
					t.Fatalf("items = %+v", got.Items)
				}
				if !got.Items[0].UnitPrice.Equal(mustDecimal(t, "12.50")) {
					t.Errorf("unit price = %s, want 12.50", got.Items[0].UnitPrice)
				}
				if got.Extras == nil || got.Extras.Tax == nil || !got.Extras.Tax.Value.Equal(mustDecimal(t, "8.875")) {
					t.Errorf("extras = %+v", got.Extras)
				}
				if !got.ParticipantAmounts["bob"].Equal(mustDecimal(t, "8.17")) {
					t.Errorf("bob owes %s, want 8.17", got.ParticipantAmounts["bob"])
				}
				if got.Breakdown["alice"] == nil || !got.Breakdown["alice"].Total.Equal(mustDecimal(t, "8.16")) {
					t.Errorf("breakdown = %+v", got.Breakdown)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := tt.expense(t)
			if err := store.CreateExpense(ctx, expense); err != nil {
				t.Fatalf("failed to create expense: %v", err)
			}
			if expense.ID == "" {
				t.Fatal("expense ID was not generated")
			}
			got, err := store.GetExpense(ctx, expense.ID)
			if err != nil {
				t.Fatalf("failed to get expense: %v", err)
			}
			if got.TripID != trip.ID || got.PayerID != expense.PayerID {
				t.Errorf("got expense %+v", got)
			}
			tt.check(t, got)
		})
	}
}

func TestListExpensesByTrip(t *testing.T) {
	store := newTestStore(t)
	trip := testTrip(t, store)
	ctx := context.Background()

	for i, desc := range []string{"first", "second", "third"} {
		expense := &models.Expense{
			TripID:       trip.ID,
			Description:  desc,
			Currency:     "EUR",
			Amount:       mustDecimal(t, "10.00"),
			PayerID:      "alice",
			SplitType:    models.SplitEqual,
			Participants: []string{"alice", "bob"},
			CreatedAt:    int64(1000 + i),
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("failed to create expense: %v", err)
		}
	}

	expenses, err := store.ListExpensesByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("failed to list expenses: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("got %d expenses, want 3", len(expenses))
	}
	if expenses[0].Description != "third" {
		t.Errorf("first listed = %q, want newest first", expenses[0].Description)
	}
	for _, e := range expenses {
		if len(e.Participants) != 2 {
			t.Errorf("expense %q participants = %v", e.Description, e.Participants)
		}
	}

	other, err := store.ListExpensesByTrip(ctx, "other-trip")
	if err != nil {
		t.Fatalf("failed to list expenses for empty trip: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d expenses for unknown trip, want 0", len(other))
	}
}

func TestDeleteExpense(t *testing.T) {
	store := newTestStore(t)
	trip := testTrip(t, store)
	ctx := context.Background()

	expense := &models.Expense{
		TripID:       trip.ID,
		Description:  "Dinner",
		Currency:     "EUR",
		Amount:       mustDecimal(t, "10.00"),
		PayerID:      "alice",
		SplitType:    models.SplitEqual,
		Participants: []string{"alice", "bob"},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("failed to create expense: %v", err)
	}

	if err := store.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("failed to delete expense: %v", err)
	}
	if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v after delete, want ErrNotFound", err)
	}
	if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete got %v, want ErrNotFound", err)
	}
}

func TestSettlementRoundTrip(t *testing.T) {
	store := newTestStore(t)
	trip := testTrip(t, store)
	ctx := context.Background()

	settlement := &models.Settlement{
		TripID:     trip.ID,
		FromUserID: "bob",
		ToUserID:   "alice",
		Currency:   "EUR",
		Amount:     mustDecimal(t, "3.33"),
		Note:       "dinner payback",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("failed to create settlement: %v", err)
	}
	if settlement.ID == "" {
		t.Fatal("settlement ID was not generated")
	}

	settlements, err := store.ListSettlementsByTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("failed to list settlements: %v", err)
	}
	if len(settlements) != 1 {
		t.Fatalf("got %d settlements, want 1", len(settlements))
	}
	got := settlements[0]
	if got.FromUserID != "bob" || got.ToUserID != "alice" {
		t.Errorf("got settlement %+v", got)
	}
	if !got.Amount.Equal(mustDecimal(t, "3.33")) {
		t.Errorf("amount = %s, want 3.33", got.Amount)
	}
	if got.Note != "dinner payback" {
		t.Errorf("note = %q", got.Note)
	}

	if err := store.DeleteSettlement(ctx, got.ID); err != nil {
		t.Fatalf("failed to delete settlement: %v", err)
	}
	if err := store.DeleteSettlement(ctx, got.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete got %v, want ErrNotFound", err)
	}
}
