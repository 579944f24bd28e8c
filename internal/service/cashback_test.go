package service

import (
	"context"
	"testing"
	"time"

	"cashback/internal/domain"
	"cashback/internal/period"
	"cashback/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func newService(t *testing.T) (*Service, *period.FixedClock) {
	t.Helper()
	clock := period.NewFixedClock(time.Date(2026, time.September, 15, 12, 0, 0, 0, time.UTC))
	return New(memory.New(), clock), clock
}

func TestAddBankRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	bank, err := svc.AddBank(ctx, "Тинькофф", ptr(5000))
	require.NoError(t, err)
	assert.Equal(t, "Тинькофф", bank.Name)
	require.NotNil(t, bank.Limit)
	assert.Equal(t, 5000.0, *bank.Limit)

	_, err = svc.AddBank(ctx, "Тинькофф", ptr(5000))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestAddBankNegativeLimit(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.AddBank(context.Background(), "Тинькофф", ptr(-1))
	assert.Error(t, err)
}

func TestAddCardRequiresBank(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddCard(ctx, "МИР", "Тинькофф")
	assert.ErrorIs(t, err, domain.ErrBankNotFound)

	_, err = svc.AddBank(ctx, "Тинькофф", ptr(5000))
	require.NoError(t, err)

	card, err := svc.AddCard(ctx, "МИР", "Тинькофф")
	require.NoError(t, err)
	assert.Equal(t, "МИР", card.Name)

	_, err = svc.AddCard(ctx, "МИР", "Тинькофф")
	assert.ErrorIs(t, err, domain.ErrCardExists)
}

func TestAddCashbackUniquePerCardNamePeriod(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "Тинькофф", ptr(5000))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "МИР", "Тинькофф")
	require.NoError(t, err)

	_, err = svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, period.TokenCurrent)
	require.NoError(t, err)

	_, err = svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, period.TokenCurrent)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// тот же ключ в другом периоде — не дубликат
	_, err = svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, period.TokenFuture)
	assert.NoError(t, err)
}

func TestAddCashbackErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, period.TokenCurrent)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, "yesterday")
	assert.ErrorIs(t, err, period.ErrInvalidPeriod)
}

func TestRemoveCashback(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "Тинькофф", ptr(5000))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "МИР", "Тинькофф")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, period.TokenCurrent)
	require.NoError(t, err)

	// триплет (карта, период, имя) должен совпасть целиком
	err = svc.RemoveCashback(ctx, "МИР", period.TokenFuture, "Рестораны")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	err = svc.RemoveCashback(ctx, "МИР", period.TokenCurrent, "Заправки")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	require.NoError(t, svc.RemoveCashback(ctx, "МИР", period.TokenCurrent, "Рестораны"))

	// категория удалена — карта больше не попадает в выборки
	cards, err := svc.ListCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestTransactionDebitsLedger(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "A", ptr(5000))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "X", "A")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "X", "food", 5, false, period.TokenCurrent)
	require.NoError(t, err)

	require.NoError(t, svc.Transaction(ctx, "X", "food", 1000))

	estimates, err := svc.EstimateCashback(ctx)
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	require.NotNil(t, estimates[0].Remaining)
	assert.InDelta(t, 4950.0, *estimates[0].Remaining, 1e-9)

	// леджер накапливает, а не перезаписывает
	require.NoError(t, svc.Transaction(ctx, "X", "food", 1000))

	estimates, err = svc.EstimateCashback(ctx)
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	assert.InDelta(t, 4900.0, *estimates[0].Remaining, 1e-9)
}

func TestTransactionErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "A", ptr(5000))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "X", "A")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "X", "food", 5, false, period.TokenCurrent)
	require.NoError(t, err)

	err = svc.Transaction(ctx, "unknown", "food", 1000)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	err = svc.Transaction(ctx, "X", "unknown", 1000)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestTransactionUnlimitedBankIsNoop(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "B", nil)
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "Y", "B")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "Y", "fuel", 7, false, period.TokenCurrent)
	require.NoError(t, err)

	require.NoError(t, svc.Transaction(ctx, "Y", "fuel", 10000))

	estimates, err := svc.EstimateCashback(ctx)
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	assert.Nil(t, estimates[0].Remaining)
}

func TestFutureCategoryInvisibleUntilRollover(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "Тинькофф", ptr(5000))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "МИР", "Тинькофф")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "МИР", "Рестораны", 5, false, period.TokenFuture)
	require.NoError(t, err)

	// будущая категория не действует на живые покупки
	err = svc.Transaction(ctx, "МИР", "Рестораны", 1000)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	card, _, err := svc.Choose(ctx, "Рестораны", 1000)
	require.NoError(t, err)
	assert.Nil(t, card)

	// после смены месяца период становится текущим
	clock.Advance(1)

	require.NoError(t, svc.Transaction(ctx, "МИР", "Рестораны", 1000))
	card, percent, err := svc.Choose(ctx, "Рестораны", 1000)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "МИР", card.Name)
	assert.Equal(t, 5.0, percent)
}

// setup mirrors the worked scenario: four banks, five cards, categories
// spread across them; Сбербанк has a zero limit and Альфа МИР no
// categories, so neither may surface in estimates or the card list.
func setup(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	for _, b := range []struct {
		name  string
		limit *float64
	}{
		{"Тинькофф", ptr(5000)},
		{"Банк Санкт-Петербург", ptr(3000)},
		{"Альфа", ptr(2000)},
		{"Сбербанк", ptr(0)},
	} {
		_, err := svc.AddBank(ctx, b.name, b.limit)
		require.NoError(t, err)
	}

	for _, c := range []struct{ card, bank string }{
		{"МИР", "Тинькофф"},
		{"БСПБ Карта", "Банк Санкт-Петербург"},
		{"Альфа Кредитка", "Альфа"},
		{"Альфа МИР", "Альфа"},
		{"СберКарта", "Сбербанк"},
	} {
		_, err := svc.AddCard(ctx, c.card, c.bank)
		require.NoError(t, err)
	}

	for _, cc := range []struct {
		card, name string
		percent    float64
		permanent  bool
	}{
		{"МИР", "Рестораны", 5, false},
		{"МИР", "Дом и Ремонт", 5, false},
		{"МИР", "Остальное", 1, true},
		{"БСПБ Карта", "ЖД билеты", 7, true},
		{"БСПБ Карта", "Остальное", 1.5, true},
		{"Альфа Кредитка", "Рестораны", 3, false},
		{"Альфа Кредитка", "Заправки", 5, true},
		{"СберКарта", "Остальное", 1, true},
	} {
		_, err := svc.AddCashback(ctx, cc.card, cc.name, cc.percent, cc.permanent, period.TokenCurrent)
		require.NoError(t, err)
	}
}

func TestListCards(t *testing.T) {
	svc, _ := newService(t)
	setup(t, svc)

	cards, err := svc.ListCards(context.Background())
	require.NoError(t, err)

	// Альфа МИР без категорий и СберКарта с нулевым лимитом выпадают
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"МИР", "БСПБ Карта", "Альфа Кредитка"}, names)
}

func TestEstimateCashback(t *testing.T) {
	svc, _ := newService(t)
	setup(t, svc)
	ctx := context.Background()

	estimates, err := svc.EstimateCashback(ctx)
	require.NoError(t, err)
	require.Len(t, estimates, 3)

	assert.Equal(t, "МИР", estimates[0].Card.Name)
	assert.InDelta(t, 5000, *estimates[0].Remaining, 1e-9)
	assert.Equal(t, "БСПБ Карта", estimates[1].Card.Name)
	assert.InDelta(t, 3000, *estimates[1].Remaining, 1e-9)
	assert.Equal(t, "Альфа Кредитка", estimates[2].Card.Name)
	assert.InDelta(t, 2000, *estimates[2].Remaining, 1e-9)

	require.NoError(t, svc.Transaction(ctx, "МИР", "Рестораны", 1000))
	require.NoError(t, svc.Transaction(ctx, "БСПБ Карта", "ЖД билеты", 1000))
	require.NoError(t, svc.Transaction(ctx, "Альфа Кредитка", "Рестораны", 1000))

	estimates, err = svc.EstimateCashback(ctx)
	require.NoError(t, err)
	require.Len(t, estimates, 3)

	assert.InDelta(t, 5000-1000*0.05, *estimates[0].Remaining, 1e-9)
	assert.InDelta(t, 3000-1000*0.07, *estimates[1].Remaining, 1e-9)
	assert.InDelta(t, 2000-1000*0.03, *estimates[2].Remaining, 1e-9)
}

func TestEstimateCashbackIdempotent(t *testing.T) {
	svc, _ := newService(t)
	setup(t, svc)
	ctx := context.Background()

	first, err := svc.EstimateCashback(ctx)
	require.NoError(t, err)
	second, err := svc.EstimateCashback(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChooseBestPercent(t *testing.T) {
	svc, _ := newService(t)
	setup(t, svc)
	ctx := context.Background()

	// Рестораны: МИР 5% против Альфа Кредитка 3%
	card, percent, err := svc.Choose(ctx, "Рестораны", 1000)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "МИР", card.Name)
	assert.Equal(t, 5.0, percent)

	card, percent, err = svc.Choose(ctx, "ЖД билеты", 1000)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "БСПБ Карта", card.Name)
	assert.Equal(t, 7.0, percent)
}

func TestChooseUnknownCategory(t *testing.T) {
	svc, _ := newService(t)
	setup(t, svc)

	card, _, err := svc.Choose(context.Background(), "unknown", 1000)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestChooseTieKeepsFirstSeen(t *testing.T) {
	svc, _ := newService(t)
	setup(t, svc)
	ctx := context.Background()

	// Альфа МИР получает те же 1.5%, что и БСПБ Карта; при равном
	// проценте побеждает первая по порядку обхода банков
	_, err := svc.AddCashback(ctx, "Альфа МИР", "Остальное", 1.5, false, period.TokenCurrent)
	require.NoError(t, err)

	card, percent, err := svc.Choose(ctx, "Остальное", 100)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "БСПБ Карта", card.Name)
	assert.Equal(t, 1.5, percent)
}

func TestChooseRespectsRemainingLimit(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "Малый", ptr(100))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "Малая Карта", "Малый")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "Малая Карта", "Рестораны", 10, false, period.TokenCurrent)
	require.NoError(t, err)

	_, err = svc.AddBank(ctx, "Безлимит", nil)
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "Большая Карта", "Безлимит")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "Большая Карта", "Рестораны", 2, false, period.TokenCurrent)
	require.NoError(t, err)

	// остаток 100 < 500 — несмотря на лучший процент, карта не подходит
	card, percent, err := svc.Choose(ctx, "Рестораны", 500)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "Большая Карта", card.Name)
	assert.Equal(t, 2.0, percent)

	// на границе remaining == value карта ещё подходит
	card, _, err = svc.Choose(ctx, "Рестораны", 100)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "Малая Карта", card.Name)
}

func TestExhaustedBankDropsOut(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddBank(ctx, "Малый", ptr(50))
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, "Малая Карта", "Малый")
	require.NoError(t, err)
	_, err = svc.AddCashback(ctx, "Малая Карта", "food", 10, false, period.TokenCurrent)
	require.NoError(t, err)

	// 10% от 500 = 50 — лимит исчерпан в ноль
	require.NoError(t, svc.Transaction(ctx, "Малая Карта", "food", 500))

	estimates, err := svc.EstimateCashback(ctx)
	require.NoError(t, err)
	assert.Empty(t, estimates)

	cards, err := svc.ListCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
