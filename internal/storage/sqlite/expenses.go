package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
	"github.com/taihartman/splitledger/internal/storage"
)

// itemizedDoc is the JSON document stored in expenses.itemized for itemized
// splits. It round-trips the bill inputs and the computed breakdown so the
// audit view can be rendered without recomputation.
type itemizedDoc struct {
	Items     []models.LineItem                       `json:"items,omitempty"`
	Extras    *models.Extras                          `json:"extras,omitempty"`
	Rule      *models.AllocationRule                  `json:"rule,omitempty"`
	Breakdown map[string]*models.ParticipantBreakdown `json:"breakdown,omitempty"`
}

// CreateExpense persists a new expense with its participant rows.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	var itemized interface{}
	if expense.SplitType == models.SplitItemized {
		doc, err := json.Marshal(itemizedDoc{
			Items:     expense.Items,
			Extras:    expense.Extras,
			Rule:      expense.Rule,
			Breakdown: expense.Breakdown,
		})
		if err != nil {
			return fmt.Errorf("failed to encode itemized details: %w", err)
		}
		itemized = string(doc)
	}

	var category interface{}
	if expense.Category != "" {
		category = expense.Category
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, trip_id, description, currency, amount, payer_id, category, split_type, itemized, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.TripID, expense.Description, expense.Currency,
		expense.Amount.String(), expense.PayerID, category, string(expense.SplitType), itemized, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, userID := range expenseParticipants(expense) {
		var weight, owed interface{}
		if w, ok := expense.Weights[userID]; ok {
			weight = w.String()
		}
		if amt, ok := expense.ParticipantAmounts[userID]; ok {
			owed = amt.String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, weight, amount_owed) VALUES (?, ?, ?, ?)",
			expense.ID, userID, weight, owed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including participants and any
// itemized details.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.scanExpense(s.db.QueryRowContext(ctx,
		`SELECT id, trip_id, description, currency, amount, payer_id, category, split_type, itemized, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadParticipants(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByTrip retrieves all expenses for a trip, newest first.
func (s *SQLiteStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, description, currency, amount, payer_id, category, split_type, itemized, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY created_at DESC, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := s.scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadParticipants(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", expenseID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount, splitType string
	var category, itemized sql.NullString

	err := row.Scan(&expense.ID, &expense.TripID, &expense.Description, &expense.Currency,
		&amount, &expense.PayerID, &category, &splitType, &itemized, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	expense.SplitType = models.SplitType(splitType)
	if category.Valid {
		expense.Category = category.String
	}
	if itemized.Valid {
		var doc itemizedDoc
		if err := json.Unmarshal([]byte(itemized.String), &doc); err != nil {
			return nil, fmt.Errorf("invalid stored itemized details: %w", err)
		}
		expense.Items = doc.Items
		expense.Extras = doc.Extras
		expense.Rule = doc.Rule
		expense.Breakdown = doc.Breakdown
	}
	return expense, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, weight, amount_owed FROM expense_participants WHERE expense_id = ? ORDER BY user_id",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var weight, owed sql.NullString
		if err := rows.Scan(&userID, &weight, &owed); err != nil {
			return fmt.Errorf("failed to scan expense participant: %w", err)
		}
		expense.Participants = append(expense.Participants, userID)
		if weight.Valid {
			w, err := decimal.NewFromString(weight.String)
			if err != nil {
				return fmt.Errorf("invalid stored weight %q: %w", weight.String, err)
			}
			if expense.Weights == nil {
				expense.Weights = make(map[string]decimal.Decimal)
			}
			expense.Weights[userID] = w
		}
		if owed.Valid {
			amt, err := decimal.NewFromString(owed.String)
			if err != nil {
				return fmt.Errorf("invalid stored amount owed %q: %w", owed.String, err)
			}
			if expense.ParticipantAmounts == nil {
				expense.ParticipantAmounts = make(map[string]decimal.Decimal)
			}
			expense.ParticipantAmounts[userID] = amt
		}
	}
	return rows.Err()
}

// expenseParticipants derives the participant set for the participant rows,
// regardless of split type.
func expenseParticipants(expense *models.Expense) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range expense.Participants {
		add(id)
	}
	for id := range expense.Weights {
		add(id)
	}
	for id := range expense.ParticipantAmounts {
		add(id)
	}
	return ids
}
