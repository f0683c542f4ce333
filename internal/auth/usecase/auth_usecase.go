package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	authdomain "cleanagent-backend/internal/auth/domain"
	authdto "cleanagent-backend/internal/auth/dto"
	"cleanagent-backend/internal/auth/repository"
	"cleanagent-backend/pkg/config"
	"cleanagent-backend/pkg/crypto"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Scopes needed for Gmail and user info. Google automatically re-adds
// 'openid' on consent, so the granted set can differ from this one; a
// usable access token is treated as success regardless.
var oauthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/gmail.modify",
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	vault    *crypto.Vault
	config   *config.Config
	oauth    *oauth2.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, vault *crypto.Vault, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		vault:    vault,
		config:   cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       oauthScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

func (u *authUsecase) LoginURL() string {
	// Force consent so Google hands back a refresh token every time
	return u.oauth.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// googleUserInfo represents the response from Google's userinfo endpoint
type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (u *authUsecase) HandleGoogleCallback(ctx context.Context, code string) (*authdto.CallbackResult, error) {
	token, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	if token.AccessToken == "" {
		return nil, errors.New("no access token received from Google")
	}

	email, err := u.fetchUserEmail(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := u.upsertUser(email, token)
	if err != nil {
		return nil, err
	}

	sessionToken, err := u.generateSessionToken(user)
	if err != nil {
		return nil, err
	}

	log.Printf("[Auth] OAuth callback successful for user: %s", email)
	return &authdto.CallbackResult{
		User:         user,
		SessionToken: sessionToken,
	}, nil
}

func (u *authUsecase) fetchUserEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := u.oauth.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return "", fmt.Errorf("error contacting Google API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to get user info from Google: status %d, body: %s", resp.StatusCode, string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("could not get user email from Google")
	}
	return info.Email, nil
}

// upsertUser creates or updates the user row for this email address.
// The refresh token is encrypted before it touches the database; when
// Google omits one (re-consent of a known user) the stored value is kept.
func (u *authUsecase) upsertUser(email string, token *oauth2.Token) (*authdomain.User, error) {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}

	var encryptedRefresh string
	if token.RefreshToken != "" {
		encryptedRefresh, err = u.vault.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}

	if user != nil {
		user.AccessToken = token.AccessToken
		if encryptedRefresh != "" {
			user.RefreshToken = encryptedRefresh
		}
		user.TokenExpiresAt = &expiresAt
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user = &authdomain.User{
		Email:          email,
		AccessToken:    token.AccessToken,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: &expiresAt,
	}
	if err := u.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) generateSessionToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}
