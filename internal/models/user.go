package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusPending  = "pending"
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusBanned   = "banned"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Email    string  `gorm:"uniqueIndex;not null"`
	Username string  `gorm:"uniqueIndex;not null"`
	Password string  `gorm:"not null"`
	Name     string  `gorm:"not null"`
	Gender   *string `gorm:"default:null"`
	Role     string  `gorm:"default:'user'"`
	Status   string  `gorm:"default:'pending'"`
	// Balance is the custodial saldo. Stored as NUMERIC, never float.
	Balance         decimal.Decimal `gorm:"type:numeric(20,2);default:0"`
	WithdrawBlocked bool            `gorm:"default:false"`
	// AllowedWithdrawIPs is a comma-separated allow-list. Empty = unrestricted.
	AllowedWithdrawIPs string `gorm:"default:''"`
	TokenVersion       int    `gorm:"default:1"`
	LastLoginAt        time.Time
	LastLoginIP        string
}

// CanTransact reports whether the account may move money at all.
func (u *User) CanTransact() bool {
	return u.Status == UserStatusActive
}

// HasRole checks the user's permission tag.
func (u *User) HasRole(role string) bool {
	return u.Role == role
}

// WithdrawIPAllowed checks the source IP against the user's allow-list.
// An empty list means any IP is accepted.
func (u *User) WithdrawIPAllowed(ip string) bool {
	if strings.TrimSpace(u.AllowedWithdrawIPs) == "" {
		return true
	}
	for _, allowed := range strings.Split(u.AllowedWithdrawIPs, ",") {
		if strings.TrimSpace(allowed) == ip {
			return true
		}
	}
	return false
}
