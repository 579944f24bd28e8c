// internal/service/cashback.go
package service

import (
	"cashback/internal/domain"
	"cashback/internal/period"
	"cashback/internal/storage"
	"context"
	"fmt"
	"log/slog"
)

// Service implements the cashback operations over the storage contract.
// Every public method runs inside one storage unit of work. "Now" comes
// from the injected clock, never from the system clock directly.
type Service struct {
	store storage.Store
	clock period.Clock
}

func New(store storage.Store, clock period.Clock) *Service {
	return &Service{store: store, clock: clock}
}

func (s *Service) currentPeriod() int {
	return int(s.clock.Now().Month())
}

// PeriodLabel converts a stored period back to its display token.
func (s *Service) PeriodLabel(p int) string {
	return period.Label(p, s.clock.Now())
}

func (s *Service) AddBank(ctx context.Context, name string, limit *float64) (*domain.Bank, error) {
	if limit != nil && *limit < 0 {
		return nil, fmt.Errorf("limit must be non-negative, got %v", *limit)
	}

	var bank *domain.Bank
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		bank, err = tx.InsertBank(ctx, name, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("bank added", "bank", name)
	return bank, nil
}

func (s *Service) AddCard(ctx context.Context, cardName, bankName string) (*domain.Card, error) {
	var card *domain.Card
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		bank, err := tx.FindBank(ctx, bankName)
		if err != nil {
			return err
		}
		if bank == nil {
			return fmt.Errorf("%w: %q", domain.ErrBankNotFound, bankName)
		}
		card, err = tx.InsertCard(ctx, cardName, bank.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("card added", "card", cardName, "bank", bankName)
	return card, nil
}

func (s *Service) AddCashback(ctx context.Context, cardName, categoryName string, percent float64, permanent bool, periodToken string) (*domain.CashbackCategory, error) {
	p, err := period.Resolve(periodToken, s.clock.Now())
	if err != nil {
		return nil, err
	}

	var cat *domain.CashbackCategory
	err = s.store.WithinTx(ctx, func(tx storage.Tx) error {
		card, err := tx.FindCard(ctx, cardName)
		if err != nil {
			return err
		}
		if card == nil {
			return fmt.Errorf("%w: %q", domain.ErrCardNotFound, cardName)
		}
		cat, err = tx.InsertCategory(ctx, card.ID, categoryName, percent, permanent, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("cashback added", "card", cardName, "category", categoryName, "percent", percent, "period", p)
	return cat, nil
}

func (s *Service) RemoveCashback(ctx context.Context, cardName, periodToken, categoryName string) error {
	p, err := period.Resolve(periodToken, s.clock.Now())
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx storage.Tx) error {
		card, err := tx.FindCard(ctx, cardName)
		if err != nil {
			return err
		}
		if card == nil {
			return fmt.Errorf("%w: %q", domain.ErrCardNotFound, cardName)
		}

		categories, err := tx.CategoriesOf(ctx, card.ID)
		if err != nil {
			return err
		}
		for _, cat := range categories {
			if cat.Name == categoryName && cat.Period == p {
				return tx.DeleteCategory(ctx, cat.ID)
			}
		}
		return fmt.Errorf("%w: %q (%s)", domain.ErrCategoryNotFound, categoryName, periodToken)
	})
}

// Transaction debits the owning bank's ledger by percent/100·value for
// the category active in the current period. Banks without a limit are
// never debited: there is nothing to track.
func (s *Service) Transaction(ctx context.Context, cardName, categoryName string, value float64) error {
	cur := s.currentPeriod()

	return s.store.WithinTx(ctx, func(tx storage.Tx) error {
		card, err := tx.FindCard(ctx, cardName)
		if err != nil {
			return err
		}
		if card == nil {
			return fmt.Errorf("%w: %q", domain.ErrCardNotFound, cardName)
		}

		bank, err := tx.FindBankByID(ctx, card.BankID)
		if err != nil {
			return err
		}
		if bank == nil {
			return fmt.Errorf("%w: id %d", domain.ErrBankNotFound, card.BankID)
		}
		if bank.Limit == nil {
			return nil
		}

		categories, err := tx.CategoriesOf(ctx, card.ID)
		if err != nil {
			return err
		}
		for _, cat := range categories {
			if cat.Name == categoryName && cat.Period == cur {
				cashback := cat.Percent / 100 * value
				return tx.UpsertLedger(ctx, bank.ID, cur, cashback)
			}
		}
		return fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, categoryName)
	})
}

// EstimateCashback reports, per card, the bank's remaining
// cashback-eligible budget for the current period. Banks whose budget
// is exhausted are skipped, as are cards without any category.
func (s *Service) EstimateCashback(ctx context.Context) ([]domain.CardEstimate, error) {
	cur := s.currentPeriod()

	var estimates []domain.CardEstimate
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		banks, err := tx.ListBanks(ctx)
		if err != nil {
			return err
		}
		for _, bank := range banks {
			remaining, err := s.remainingLimit(ctx, tx, bank, cur)
			if err != nil {
				return err
			}
			if remaining != nil && *remaining <= 0 {
				continue
			}
			cards, err := s.cardsWithCategories(ctx, tx, bank.ID)
			if err != nil {
				return err
			}
			for _, card := range cards {
				estimates = append(estimates, domain.CardEstimate{Card: card, Remaining: remaining})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return estimates, nil
}

// Choose returns the card with the highest percent for categoryName in
// the current period, among banks whose remaining budget covers value.
// A nil card means nothing qualifies. Ties keep the first-seen card.
func (s *Service) Choose(ctx context.Context, categoryName string, value float64) (*domain.Card, float64, error) {
	cur := s.currentPeriod()

	var (
		best        *domain.Card
		bestPercent float64
	)
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		banks, err := tx.ListBanks(ctx)
		if err != nil {
			return err
		}
		for _, bank := range banks {
			remaining, err := s.remainingLimit(ctx, tx, bank, cur)
			if err != nil {
				return err
			}
			if remaining != nil && *remaining < value {
				continue
			}
			cards, err := tx.CardsOf(ctx, bank.ID)
			if err != nil {
				return err
			}
			for _, card := range cards {
				categories, err := tx.CategoriesOf(ctx, card.ID)
				if err != nil {
					return err
				}
				for _, cat := range categories {
					if cat.Name != categoryName || cat.Period != cur {
						continue
					}
					if best == nil || cat.Percent > bestPercent {
						c := card
						best = &c
						bestPercent = cat.Percent
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return best, bestPercent, nil
}

// ListCards applies the same bank and card filters as EstimateCashback
// but returns the cards alone.
func (s *Service) ListCards(ctx context.Context) ([]domain.Card, error) {
	cur := s.currentPeriod()

	var result []domain.Card
	err := s.store.WithinTx(ctx, func(tx storage.Tx) error {
		banks, err := tx.ListBanks(ctx)
		if err != nil {
			return err
		}
		for _, bank := range banks {
			remaining, err := s.remainingLimit(ctx, tx, bank, cur)
			if err != nil {
				return err
			}
			if remaining != nil && *remaining <= 0 {
				continue
			}
			cards, err := s.cardsWithCategories(ctx, tx, bank.ID)
			if err != nil {
				return err
			}
			result = append(result, cards...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// remainingLimit = limit − ledger(bank, period); nil if no limit is set.
func (s *Service) remainingLimit(ctx context.Context, tx storage.Tx, bank domain.Bank, p int) (*float64, error) {
	if bank.Limit == nil {
		return nil, nil
	}
	spent, err := tx.LedgerAmount(ctx, bank.ID, p)
	if err != nil {
		return nil, err
	}
	remaining := *bank.Limit - spent
	return &remaining, nil
}

// cardsWithCategories returns the bank's cards that have at least one
// cashback category, of any period.
func (s *Service) cardsWithCategories(ctx context.Context, tx storage.Tx, bankID int) ([]domain.Card, error) {
	cards, err := tx.CardsOf(ctx, bankID)
	if err != nil {
		return nil, err
	}
	var result []domain.Card
	for _, card := range cards {
		categories, err := tx.CategoriesOf(ctx, card.ID)
		if err != nil {
			return nil, err
		}
		if len(categories) > 0 {
			result = append(result, card)
		}
	}
	return result, nil
}
