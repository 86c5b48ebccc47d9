package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/platform/config"
	"github.com/sajhapunji/broker-backoffice/internal/utils"
)

// tokenService implements TokenSvcFacade. It needs only the configuration
// for the signing secret, expiry and issuer.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, string(user.Role), s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// ParseAccessToken validates a token string and returns the actor it carries.
func (s *tokenService) ParseAccessToken(ctx context.Context, tokenString string) (*domain.Actor, error) {
	claims, err := utils.ParseAndValidateJWT(tokenString, s.cfg.JWTSecret)
	if err != nil {
		// Expired, malformed and badly signed tokens all read as
		// unauthorized to the caller.
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return nil, apperrors.ErrUnauthorized
	}
	role := domain.Role(claims.Role)
	if !role.IsValid() {
		return nil, apperrors.ErrUnauthorized
	}

	return &domain.Actor{UserID: claims.Subject, Role: role}, nil
}
