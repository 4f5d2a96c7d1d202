// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/taihartman/splitledger/internal/models"
)

// ErrNotFound is wrapped by store implementations when a requested entity
// does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for trip, expense and settlement persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// The store never computes anything: expenses are written with whatever
// breakdown the calculator produced and read back unchanged.
type Store interface {
	// CreateTrip persists a new trip. A missing ID/CreatedAt is populated.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by ID, including its members.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// CreateExpense persists a new expense, including split details and any
	// precomputed itemized breakdown.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByTrip retrieves all expenses for a trip, newest first.
	ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement persists a recorded payment between two members.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByTrip retrieves all settlements for a trip, newest first.
	ListSettlementsByTrip(ctx context.Context, tripID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement by ID.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Close releases any resources held by the store.
	Close() error
}
