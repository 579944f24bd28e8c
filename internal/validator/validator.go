// internal/validator/validator.go
package validator

import (
	"regexp"

	"cashback/internal/period"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	// Валидация токена периода: только "current" или "future"
	_ = Validate.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == period.TokenCurrent || s == period.TokenFuture
	})

	// Регистрируем валидацию: строка не пустая и не только пробелы
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(regexp.MustCompile(`\S`).FindString(s)) > 0
	})
}
