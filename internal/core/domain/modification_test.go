package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

func TestChanges_EncodeDecodeRoundTrip(t *testing.T) {
	newStatus := domain.AccountFrozen
	number := "ACC-99"

	raw, err := domain.EncodeChanges(domain.AccountChanges{
		AccountNumber: &number,
		Status:        &newStatus,
	})
	require.NoError(t, err)

	req := domain.ModificationRequest{
		RequestID:  "req-1",
		EntityType: domain.GovernedAccount,
		EntityID:   "acc-1",
		ChangeType: domain.ChangeUpdate,
		Changes:    raw,
	}

	decoded, err := domain.DecodeChanges(req)
	require.NoError(t, err)

	changes, ok := decoded.(*domain.AccountChanges)
	require.True(t, ok, "decoded to %T", decoded)
	require.NotNil(t, changes.AccountNumber)
	assert.Equal(t, "ACC-99", *changes.AccountNumber)
	require.NotNil(t, changes.Status)
	assert.Equal(t, domain.AccountFrozen, *changes.Status)
	assert.Nil(t, changes.IsPrimary)
}

func TestDecodeChanges_TypePerEntity(t *testing.T) {
	tests := []struct {
		entityType domain.GovernedEntity
		wantType   any
	}{
		{domain.GovernedAccount, &domain.AccountChanges{}},
		{domain.GovernedCustomer, &domain.CustomerChanges{}},
		{domain.GovernedHolding, &domain.HoldingChanges{}},
		{domain.GovernedIPOApplication, &domain.IPOApplicationChanges{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.entityType), func(t *testing.T) {
			decoded, err := domain.DecodeChanges(domain.ModificationRequest{EntityType: tt.entityType})
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, decoded)
		})
	}
}

func TestDecodeChanges_UnknownEntity(t *testing.T) {
	_, err := domain.DecodeChanges(domain.ModificationRequest{EntityType: "WORKPLACE"})
	assert.Error(t, err)
}

func TestModificationRequest_IsResolved(t *testing.T) {
	assert.False(t, domain.ModificationRequest{Status: domain.RequestPending}.IsResolved())
	assert.True(t, domain.ModificationRequest{Status: domain.RequestApproved}.IsResolved())
	assert.True(t, domain.ModificationRequest{Status: domain.RequestRejected}.IsResolved())
}
