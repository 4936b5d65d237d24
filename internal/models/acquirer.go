package models

import "gorm.io/gorm"

// Acquirer capabilities, one per payment rail.
const (
	CapabilityPix    = "pix"
	CapabilityCard   = "card"
	CapabilityBillet = "billet"
)

// Acquirer is a configured external payment provider integration.
type Acquirer struct {
	gorm.Model
	Reference string `gorm:"uniqueIndex;not null"`
	Enabled   bool   `gorm:"default:true"`
	IsDefault bool   `gorm:"default:false"`
	// Per-capability default flags. At most one enabled acquirer should be
	// default per capability; the registry logs it when configuration
	// violates that.
	DefaultForPix    bool `gorm:"default:false"`
	DefaultForCard   bool `gorm:"default:false"`
	DefaultForBillet bool `gorm:"default:false"`
	Endpoint         string
}

// DefaultFor reports whether this acquirer is flagged default for the
// given capability, falling back to the global default flag.
func (a *Acquirer) DefaultFor(capability string) bool {
	switch capability {
	case CapabilityPix:
		return a.DefaultForPix || a.IsDefault
	case CapabilityCard:
		return a.DefaultForCard || a.IsDefault
	case CapabilityBillet:
		return a.DefaultForBillet || a.IsDefault
	default:
		return false
	}
}
