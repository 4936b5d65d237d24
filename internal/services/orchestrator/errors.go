package orchestrator

import "errors"

var (
	// ErrAccountInactive means the authenticated principal's account is
	// not in a state that may move money.
	ErrAccountInactive = errors.New("account is not active")
	// ErrIPNotAllowed means the withdraw came from outside the user's
	// configured IP allow-list.
	ErrIPNotAllowed = errors.New("source ip not allowed for withdraw")
	// ErrUnknownTransaction means a callback referenced a provider
	// transaction id this system never recorded.
	ErrUnknownTransaction = errors.New("unknown transaction")
	// ErrUnknownOutcome rejects callback outcome values outside the
	// recognized set.
	ErrUnknownOutcome = errors.New("unknown settlement outcome")
)
