package dto

import (
	authdomain "cleanagent-backend/internal/auth/domain"
)

// CallbackResult is what a successful OAuth callback produces
type CallbackResult struct {
	User         *authdomain.User `json:"user"`
	SessionToken string           `json:"session_token"`
}

type MeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
