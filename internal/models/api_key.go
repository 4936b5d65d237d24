package models

import "gorm.io/gorm"

// API key statuses. A revoked key fails authentication permanently.
const (
	ApiKeyStatusActive  = "active"
	ApiKeyStatusRevoked = "revoked"
)

// ApiKey is a token+secret credential pair for server-to-server calls,
// distinct from session bearer tokens. The secret is stored hashed; the
// plaintext is returned to the caller exactly once at issuance.
type ApiKey struct {
	gorm.Model
	UserID     uint   `gorm:"index;not null"`
	Token      string `gorm:"uniqueIndex;not null"`
	SecretHash string `gorm:"not null"`
	Status     string `gorm:"default:'active'"`
}
