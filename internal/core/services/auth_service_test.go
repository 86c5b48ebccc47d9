package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/core/services"
	"github.com/sajhapunji/broker-backoffice/internal/platform/config"
)

func testTokenConfig(expiry time.Duration) *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret-that-is-long-enough",
		JWTExpiryDuration: expiry,
		JWTIssuer:         "broker-backoffice-test",
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testTokenConfig(time.Hour))
	user := &domain.User{UserID: "u-1", Username: "jdoe", Role: domain.RoleChecker}

	token, expiresAt, err := svc.GenerateAccessToken(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	actor, err := svc.ParseAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", actor.UserID)
	assert.Equal(t, domain.RoleChecker, actor.Role)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testTokenConfig(-time.Minute))
	user := &domain.User{UserID: "u-1", Role: domain.RoleMaker}

	token, _, err := svc.GenerateAccessToken(ctx, user)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenService_WrongSecret(t *testing.T) {
	ctx := context.Background()
	signer := services.NewTokenService(testTokenConfig(time.Hour))
	verifier := services.NewTokenService(&config.Config{
		JWTSecret:         "a-completely-different-secret-key",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "broker-backoffice-test",
	})
	user := &domain.User{UserID: "u-1", Role: domain.RoleMaker}

	token, _, err := signer.GenerateAccessToken(ctx, user)
	require.NoError(t, err)

	_, err = verifier.ParseAccessToken(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenService_GarbageToken(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testTokenConfig(time.Hour))

	_, err := svc.ParseAccessToken(ctx, "not-a-jwt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
