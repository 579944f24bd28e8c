// internal/storage/postgres/postgres.go
package postgres

import (
	"cashback/internal/domain"
	"cashback/internal/storage"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// WithinTx runs fn inside a single database transaction: commit on
// success, rollback on any error.
func (s *Storage) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

// uniqueViolation — код 23505 (unique_violation) в Postgres.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// === Banks ===

func (t *pgTx) FindBank(ctx context.Context, name string) (*domain.Bank, error) {
	var bank domain.Bank
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, cashback_limit FROM banks WHERE name = $1
	`, name).Scan(&bank.ID, &bank.Name, &bank.Limit)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find bank: %w", err)
	}
	return &bank, nil
}

func (t *pgTx) FindBankByID(ctx context.Context, id int) (*domain.Bank, error) {
	var bank domain.Bank
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, cashback_limit FROM banks WHERE id = $1
	`, id).Scan(&bank.ID, &bank.Name, &bank.Limit)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find bank by id: %w", err)
	}
	return &bank, nil
}

func (t *pgTx) InsertBank(ctx context.Context, name string, limit *float64) (*domain.Bank, error) {
	bank := domain.Bank{Name: name, Limit: limit}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO banks (name, cashback_limit) VALUES ($1, $2) RETURNING id
	`, name, limit).Scan(&bank.ID)
	if err != nil {
		if uniqueViolation(err) {
			return nil, domain.ErrBankExists
		}
		return nil, fmt.Errorf("insert bank: %w", err)
	}
	return &bank, nil
}

func (t *pgTx) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, name, cashback_limit FROM banks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var banks []domain.Bank
	for rows.Next() {
		var bank domain.Bank
		if err := rows.Scan(&bank.ID, &bank.Name, &bank.Limit); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, bank)
	}
	return banks, rows.Err()
}

// === Cards ===

func (t *pgTx) FindCard(ctx context.Context, name string) (*domain.Card, error) {
	var card domain.Card
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, bank_id FROM cards WHERE name = $1
	`, name).Scan(&card.ID, &card.Name, &card.BankID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find card: %w", err)
	}
	return &card, nil
}

func (t *pgTx) InsertCard(ctx context.Context, name string, bankID int) (*domain.Card, error) {
	card := domain.Card{Name: name, BankID: bankID}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO cards (name, bank_id) VALUES ($1, $2) RETURNING id
	`, name, bankID).Scan(&card.ID)
	if err != nil {
		if uniqueViolation(err) {
			return nil, domain.ErrCardExists
		}
		return nil, fmt.Errorf("insert card: %w", err)
	}
	return &card, nil
}

func (t *pgTx) CardsOf(ctx context.Context, bankID int) ([]domain.Card, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, name, bank_id FROM cards WHERE bank_id = $1 ORDER BY id
	`, bankID)
	if err != nil {
		return nil, fmt.Errorf("cards of bank: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var card domain.Card
		if err := rows.Scan(&card.ID, &card.Name, &card.BankID); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// === Categories ===

func (t *pgTx) CategoriesOf(ctx context.Context, cardID int) ([]domain.CashbackCategory, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, card_id, name, percent, permanent, period
		FROM cashback_categories
		WHERE card_id = $1
		ORDER BY id
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("categories of card: %w", err)
	}
	defer rows.Close()

	var categories []domain.CashbackCategory
	for rows.Next() {
		var cat domain.CashbackCategory
		if err := rows.Scan(&cat.ID, &cat.CardID, &cat.Name, &cat.Percent, &cat.Permanent, &cat.Period); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (t *pgTx) InsertCategory(ctx context.Context, cardID int, name string, percent float64, permanent bool, period int) (*domain.CashbackCategory, error) {
	cat := domain.CashbackCategory{
		CardID:    cardID,
		Name:      name,
		Percent:   percent,
		Permanent: permanent,
		Period:    period,
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO cashback_categories (card_id, name, percent, permanent, period)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, cardID, name, percent, permanent, period).Scan(&cat.ID)
	if err != nil {
		if uniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &cat, nil
}

func (t *pgTx) DeleteCategory(ctx context.Context, categoryID int) error {
	result, err := t.tx.Exec(ctx, `
		DELETE FROM cashback_categories WHERE id = $1
	`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// === Ledger ===

func (t *pgTx) UpsertLedger(ctx context.Context, bankID, period int, delta float64) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO expenditures (bank_id, period, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (bank_id, period)
		DO UPDATE SET amount = expenditures.amount + EXCLUDED.amount
	`, bankID, period, delta)
	if err != nil {
		return fmt.Errorf("upsert ledger: %w", err)
	}
	return nil
}

func (t *pgTx) LedgerAmount(ctx context.Context, bankID, period int) (float64, error) {
	var amount float64
	err := t.tx.QueryRow(ctx, `
		SELECT amount FROM expenditures WHERE bank_id = $1 AND period = $2
	`, bankID, period).Scan(&amount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("ledger amount: %w", err)
	}
	return amount, nil
}
