// internal/storage/memory/memory.go
package memory

import (
	"cashback/internal/domain"
	"cashback/internal/storage"
	"context"
	"sync"
)

// Store is an in-memory implementation of the storage contract, used
// by the test suites. Records keep insertion order, uniqueness mirrors
// the database indexes, and WithinTx restores a pre-transaction
// snapshot when fn fails.
type Store struct {
	mu    sync.Mutex
	state state
}

type ledgerKey struct {
	bankID int
	period int
}

type state struct {
	nextID     int
	banks      []domain.Bank
	cards      []domain.Card
	categories []domain.CashbackCategory
	ledger     map[ledgerKey]float64
}

func New() *Store {
	return &Store{state: state{nextID: 1, ledger: make(map[ledgerKey]float64)}}
}

func (s *state) clone() state {
	c := state{
		nextID:     s.nextID,
		banks:      append([]domain.Bank(nil), s.banks...),
		cards:      append([]domain.Card(nil), s.cards...),
		categories: append([]domain.CashbackCategory(nil), s.categories...),
		ledger:     make(map[ledgerKey]float64, len(s.ledger)),
	}
	for k, v := range s.ledger {
		c.ledger[k] = v
	}
	return c
}

func (s *Store) WithinTx(_ context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&memTx{state: &s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type memTx struct {
	state *state
}

func (t *memTx) nextID() int {
	id := t.state.nextID
	t.state.nextID++
	return id
}

// === Banks ===

func (t *memTx) FindBank(_ context.Context, name string) (*domain.Bank, error) {
	for _, b := range t.state.banks {
		if b.Name == name {
			bank := b
			return &bank, nil
		}
	}
	return nil, nil
}

func (t *memTx) FindBankByID(_ context.Context, id int) (*domain.Bank, error) {
	for _, b := range t.state.banks {
		if b.ID == id {
			bank := b
			return &bank, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertBank(_ context.Context, name string, limit *float64) (*domain.Bank, error) {
	for _, b := range t.state.banks {
		if b.Name == name {
			return nil, domain.ErrBankExists
		}
	}
	bank := domain.Bank{ID: t.nextID(), Name: name, Limit: limit}
	t.state.banks = append(t.state.banks, bank)
	return &bank, nil
}

func (t *memTx) ListBanks(_ context.Context) ([]domain.Bank, error) {
	return append([]domain.Bank(nil), t.state.banks...), nil
}

// === Cards ===

func (t *memTx) FindCard(_ context.Context, name string) (*domain.Card, error) {
	for _, c := range t.state.cards {
		if c.Name == name {
			card := c
			return &card, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertCard(_ context.Context, name string, bankID int) (*domain.Card, error) {
	for _, c := range t.state.cards {
		if c.Name == name {
			return nil, domain.ErrCardExists
		}
	}
	card := domain.Card{ID: t.nextID(), Name: name, BankID: bankID}
	t.state.cards = append(t.state.cards, card)
	return &card, nil
}

func (t *memTx) CardsOf(_ context.Context, bankID int) ([]domain.Card, error) {
	var cards []domain.Card
	for _, c := range t.state.cards {
		if c.BankID == bankID {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// === Categories ===

func (t *memTx) CategoriesOf(_ context.Context, cardID int) ([]domain.CashbackCategory, error) {
	var categories []domain.CashbackCategory
	for _, cat := range t.state.categories {
		if cat.CardID == cardID {
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

func (t *memTx) InsertCategory(_ context.Context, cardID int, name string, percent float64, permanent bool, period int) (*domain.CashbackCategory, error) {
	for _, cat := range t.state.categories {
		if cat.CardID == cardID && cat.Name == name && cat.Period == period {
			return nil, domain.ErrCategoryExists
		}
	}
	cat := domain.CashbackCategory{
		ID:        t.nextID(),
		CardID:    cardID,
		Name:      name,
		Percent:   percent,
		Permanent: permanent,
		Period:    period,
	}
	t.state.categories = append(t.state.categories, cat)
	return &cat, nil
}

func (t *memTx) DeleteCategory(_ context.Context, categoryID int) error {
	for i, cat := range t.state.categories {
		if cat.ID == categoryID {
			t.state.categories = append(t.state.categories[:i], t.state.categories[i+1:]...)
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

// === Ledger ===

func (t *memTx) UpsertLedger(_ context.Context, bankID, period int, delta float64) error {
	t.state.ledger[ledgerKey{bankID, period}] += delta
	return nil
}

func (t *memTx) LedgerAmount(_ context.Context, bankID, period int) (float64, error) {
	return t.state.ledger[ledgerKey{bankID, period}], nil
}
