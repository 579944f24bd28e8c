// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Base sentinels. Callers branch with errors.Is; the per-entity
// wrappers below all match their base.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

var (
	ErrBankNotFound     = fmt.Errorf("bank %w", ErrNotFound)
	ErrCardNotFound     = fmt.Errorf("card %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	ErrBankExists     = fmt.Errorf("bank %w", ErrDuplicate)
	ErrCardExists     = fmt.Errorf("card %w", ErrDuplicate)
	ErrCategoryExists = fmt.Errorf("category %w", ErrDuplicate)
)
