package delivery

import (
	"fmt"
	"net/http"
	"net/url"

	authdomain "cleanagent-backend/internal/auth/domain"
	authdto "cleanagent-backend/internal/auth/dto"
	"cleanagent-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	frontendURL string
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		frontendURL: frontendURL,
	}
}

// GoogleLogin redirects the browser to Google's consent screen
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.authUsecase.LoginURL())
}

// GoogleCallback finishes the OAuth flow and redirects to the frontend
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	result, err := h.authUsecase.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		h.redirectWithError(c, err.Error())
		return
	}

	redirect := fmt.Sprintf("%s/auth/callback?success=true&email=%s&token=%s",
		h.frontendURL,
		url.QueryEscape(result.User.Email),
		url.QueryEscape(result.SessionToken),
	)
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

func (h *AuthHandler) redirectWithError(c *gin.Context, msg string) {
	redirect := fmt.Sprintf("%s/auth/callback?success=false&error=%s", h.frontendURL, url.QueryEscape(msg))
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

// Me returns the authenticated user (requires AuthMiddleware)
func (h *AuthHandler) Me(c *gin.Context) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user := value.(*authdomain.User)
	c.JSON(http.StatusOK, authdto.MeResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Logout is a no-op for stateless session tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
