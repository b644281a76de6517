package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hucha-app/hucha/internal/apperrors"
	"github.com/hucha-app/hucha/internal/middleware"
	"github.com/hucha-app/hucha/internal/platform/config"
	"github.com/hucha-app/hucha/internal/utils"
)

// AuthService verifies the single configured credential pair and issues
// bearer tokens for the snapshot API. The backend serves one user; there is
// no account management.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates an auth service bound to the server configuration.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// Login checks the credentials against the configured user and returns a
// signed JWT with its expiry. Wrong credentials yield apperrors.ErrUnauthorized
// without detail about which half failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if username != s.cfg.AuthUsername || !utils.CheckPasswordHash(password, s.cfg.AuthPasswordHash) {
		logger.Warn("Login rejected", slog.String("username", username))
		return "", time.Time{}, apperrors.ErrUnauthorized
	}

	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(username, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		return "", time.Time{}, fmt.Errorf("%w: signing token: %v", apperrors.ErrInternal, err)
	}

	logger.Info("Login succeeded", slog.String("username", username))
	return token, expiresAt, nil
}
