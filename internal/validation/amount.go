package validation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinTransactionAmount is the smallest accepted amount on any rail.
var MinTransactionAmount = decimal.NewFromFloat(0.01)

// MaxDescriptionLength bounds the free-text description on QR charges.
const MaxDescriptionLength = 255

// ValidateAmount enforces amount > 0 and the configured bounds.
// A zero max disables the upper bound.
func ValidateAmount(amount, max decimal.Decimal) error {
	if amount.LessThan(MinTransactionAmount) {
		return fmt.Errorf("amount must be at least %s: %w", MinTransactionAmount, ErrOutOfRange)
	}
	if !max.IsZero() && amount.GreaterThan(max) {
		return fmt.Errorf("amount exceeds maximum of %s: %w", max, ErrOutOfRange)
	}
	return nil
}

// ValidateDescription bounds the optional description text.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return InvalidFormat("description")
	}
	return nil
}
