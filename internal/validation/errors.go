package validation

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrOutOfRange        = errors.New("out of range")
	ErrInvalidPixKeyType = errors.New("invalid pix key type")
)

// MissingField wraps ErrMissingField with the field name.
func MissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// InvalidFormat wraps ErrInvalidFormat with the field name.
func InvalidFormat(field string) error {
	return fmt.Errorf("%s: %w", field, ErrInvalidFormat)
}
