// internal/domain/models.go
package domain

// Bank — банк с опциональным месячным лимитом кэшбэка.
// Limit == nil означает, что лимит не настроен (безлимит).
type Bank struct {
	ID    int      `json:"-"`
	Name  string   `json:"name"`
	Limit *float64 `json:"limit,omitempty"`
}

type Card struct {
	ID     int    `json:"-"`
	Name   string `json:"name"`
	BankID int    `json:"-"`
}

// CashbackCategory — категория + процент, привязанные к карте и периоду (месяц 1–12).
// Permanent хранится, но при выборе карты не учитывается.
type CashbackCategory struct {
	ID        int     `json:"-"`
	CardID    int     `json:"-"`
	Name      string  `json:"name"`
	Percent   float64 `json:"percent"`
	Permanent bool    `json:"permanent"`
	Period    int     `json:"-"`
}

// CardEstimate pairs a card with the remaining cashback budget of its
// bank for the current period. Remaining == nil means unlimited.
type CardEstimate struct {
	Card      Card     `json:"card"`
	Remaining *float64 `json:"remaining"`
}
