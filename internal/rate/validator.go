package rate

import (
	"errors"
)

var (
	ErrCodeRequired = errors.New("currency code is required")
	ErrCodeFormat   = errors.New("currency code must be three letters")
)

// ValidateCode checks the shape of a currency code. Whether the code is
// actually known is decided by the store, not here: new codes are registered
// on first reconcile.
func ValidateCode(code string) error {
	if code == "" {
		return ErrCodeRequired
	}
	if len(code) != 3 {
		return ErrCodeFormat
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ErrCodeFormat
		}
	}
	return nil
}
