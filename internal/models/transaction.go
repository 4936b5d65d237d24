package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction directions
const (
	DirectionDeposit  = "deposit"
	DirectionWithdraw = "withdraw"
)

// Payment rails
const (
	RailPix    = "pix"
	RailCard   = "card"
	RailBillet = "billet"
)

// Transaction states. Only created and the terminal states are durable
// markers visible externally; reserved and submitted persist just long
// enough for an acquirer callback to land.
const (
	StateCreated    = "created"
	StateAuthorized = "authorized"
	StateReserved   = "reserved"
	StateSubmitted  = "submitted"
	StateSettled    = "settled"
	StateRejected   = "rejected"
	StateExpired    = "expired"
)

// Transaction is the unit created for every deposit/withdraw attempt.
// Exactly one exists per (user, idempotency key); immutable once settled.
type Transaction struct {
	ID                    string          `gorm:"primarykey"`
	UserID                uint            `gorm:"not null;uniqueIndex:idx_tx_user_idem,priority:1"`
	IdempotencyKey        string          `gorm:"not null;uniqueIndex:idx_tx_user_idem,priority:2"`
	Direction             string          `gorm:"not null"`
	Rail                  string          `gorm:"not null"`
	Amount                decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	State                 string          `gorm:"not null;default:'created'"`
	AcquirerReference     string
	ProviderTransactionID *string `gorm:"uniqueIndex;default:null"`
	// ReservationHeld marks a provisional balance debit awaiting settlement.
	ReservationHeld bool `gorm:"default:false"`
	PixKey          string
	PixKeyType      string
	DebtorName      string
	Email           string
	Description     string
	PostbackURL     string
	QRCode          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SettledAt       *time.Time
}

// Terminal reports whether the transaction reached a final state.
func (t *Transaction) Terminal() bool {
	switch t.State {
	case StateSettled, StateRejected, StateExpired:
		return true
	}
	return false
}

// Capability maps the transaction's rail to the acquirer capability that
// serves it.
func (t *Transaction) Capability() string {
	switch t.Rail {
	case RailCard:
		return CapabilityCard
	case RailBillet:
		return CapabilityBillet
	default:
		return CapabilityPix
	}
}
