package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransact(t *testing.T) {
	assert.True(t, (&User{Status: UserStatusActive}).CanTransact())
	assert.False(t, (&User{Status: UserStatusPending}).CanTransact())
	assert.False(t, (&User{Status: UserStatusInactive}).CanTransact())
	assert.False(t, (&User{Status: UserStatusBanned}).CanTransact())
}

func TestWithdrawIPAllowed(t *testing.T) {
	unrestricted := &User{}
	assert.True(t, unrestricted.WithdrawIPAllowed("203.0.113.9"))
	assert.True(t, unrestricted.WithdrawIPAllowed(""))

	restricted := &User{AllowedWithdrawIPs: "10.0.0.1, 10.0.0.2"}
	assert.True(t, restricted.WithdrawIPAllowed("10.0.0.1"))
	assert.True(t, restricted.WithdrawIPAllowed("10.0.0.2"))
	assert.False(t, restricted.WithdrawIPAllowed("10.0.0.3"))
	assert.False(t, restricted.WithdrawIPAllowed(""))
}

func TestTransactionTerminal(t *testing.T) {
	for _, state := range []string{StateSettled, StateRejected, StateExpired} {
		assert.True(t, (&Transaction{State: state}).Terminal(), state)
	}
	for _, state := range []string{StateCreated, StateAuthorized, StateReserved, StateSubmitted} {
		assert.False(t, (&Transaction{State: state}).Terminal(), state)
	}
}

func TestTransactionCapability(t *testing.T) {
	assert.Equal(t, CapabilityPix, (&Transaction{Rail: RailPix}).Capability())
	assert.Equal(t, CapabilityCard, (&Transaction{Rail: RailCard}).Capability())
	assert.Equal(t, CapabilityBillet, (&Transaction{Rail: RailBillet}).Capability())
}

func TestAcquirerDefaultFor(t *testing.T) {
	perCapability := &Acquirer{DefaultForPix: true}
	assert.True(t, perCapability.DefaultFor(CapabilityPix))
	assert.False(t, perCapability.DefaultFor(CapabilityCard))

	global := &Acquirer{IsDefault: true}
	assert.True(t, global.DefaultFor(CapabilityPix))
	assert.True(t, global.DefaultFor(CapabilityCard))
	assert.True(t, global.DefaultFor(CapabilityBillet))
	assert.False(t, global.DefaultFor("unknown"))
}
