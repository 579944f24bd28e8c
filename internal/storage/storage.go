// internal/storage/storage.go
package storage

import (
	"cashback/internal/domain"
	"context"
)

// Tx is the data-access contract the service consumes inside one unit
// of work. Find* return (nil, nil) when the record is absent; Insert*
// return domain.ErrDuplicate wrappers on uniqueness violations.
type Tx interface {
	FindBank(ctx context.Context, name string) (*domain.Bank, error)
	FindBankByID(ctx context.Context, id int) (*domain.Bank, error)
	InsertBank(ctx context.Context, name string, limit *float64) (*domain.Bank, error)
	ListBanks(ctx context.Context) ([]domain.Bank, error)

	FindCard(ctx context.Context, name string) (*domain.Card, error)
	InsertCard(ctx context.Context, name string, bankID int) (*domain.Card, error)
	CardsOf(ctx context.Context, bankID int) ([]domain.Card, error)

	CategoriesOf(ctx context.Context, cardID int) ([]domain.CashbackCategory, error)
	InsertCategory(ctx context.Context, cardID int, name string, percent float64, permanent bool, period int) (*domain.CashbackCategory, error)
	DeleteCategory(ctx context.Context, categoryID int) error

	// UpsertLedger atomically adds delta to the (bank, period) cell,
	// creating it at delta if absent.
	UpsertLedger(ctx context.Context, bankID, period int, delta float64) error
	LedgerAmount(ctx context.Context, bankID, period int) (float64, error)
}

// Store opens one unit of work per service operation: fn either
// commits as a whole or rolls back on any error.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
