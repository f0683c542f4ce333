package usecase

import (
	"context"

	authdomain "cleanagent-backend/internal/auth/domain"
	authdto "cleanagent-backend/internal/auth/dto"
)

// AuthUsecase handles the Google OAuth flow and session tokens
type AuthUsecase interface {
	// LoginURL returns the Google consent URL that starts the flow
	LoginURL() string

	// HandleGoogleCallback exchanges the authorization code, upserts the
	// user with encrypted credentials and mints a session token
	HandleGoogleCallback(ctx context.Context, code string) (*authdto.CallbackResult, error)

	// ValidateToken resolves a session token to its user
	ValidateToken(tokenString string) (*authdomain.User, error)
}
