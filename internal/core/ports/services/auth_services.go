package services

import (
	"context"
	"time"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken issues a signed token carrying the user's id and
	// role.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ParseAccessToken validates a token string and returns the actor it
	// carries.
	ParseAccessToken(ctx context.Context, tokenString string) (*domain.Actor, error)
}
