package ledger

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWithdrawBlocked   = errors.New("withdraws blocked for user")
	ErrUserInactive      = errors.New("user account is not active")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)
