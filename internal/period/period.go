// internal/period/period.go
package period

import (
	"errors"
	"fmt"
	"time"
)

// Символьные токены периода, принимаемые от пользователя.
const (
	TokenCurrent = "current"
	TokenFuture  = "future"
)

var ErrInvalidPeriod = errors.New("invalid period")

// Resolve maps a symbolic token to a concrete month number 1–12
// relative to now. "future" is exactly one month ahead, wrapping
// December into January.
func Resolve(token string, now time.Time) (int, error) {
	switch token {
	case TokenCurrent:
		return int(now.Month()), nil
	case TokenFuture:
		return int(now.Month())%12 + 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, token)
	}
}

// Label is the inverse of Resolve, used for display: the month equal
// to now is "current", anything else "future".
func Label(period int, now time.Time) string {
	if period == int(now.Month()) {
		return TokenCurrent
	}
	return TokenFuture
}
