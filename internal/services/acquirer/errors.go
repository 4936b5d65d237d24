package acquirer

import (
	"errors"
	"fmt"
)

var (
	ErrNoAcquirerAvailable = errors.New("no acquirer available")
	ErrUnavailable         = errors.New("acquirer unavailable")
	ErrTimeout             = errors.New("acquirer timeout")
	ErrRejected            = errors.New("acquirer rejected")
)

// Rejected wraps ErrRejected with the provider's reason.
func Rejected(reason string) error {
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}
