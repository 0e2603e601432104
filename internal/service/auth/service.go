package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	jwt.Service
	adminEmail        string
	adminPasswordHash []byte
}

// NewAuthService checks logins against a single administrator credential.
// An empty email or hash disables login.
func NewAuthService(jwtService jwt.Service, adminEmail, adminPasswordHash string) auth.AuthService {
	return &AuthServiceImpl{
		Service:           jwtService,
		adminEmail:        strings.ToLower(strings.TrimSpace(adminEmail)),
		adminPasswordHash: []byte(adminPasswordHash),
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.AccessTokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	if a.adminEmail == "" || len(a.adminPasswordHash) == 0 {
		slog.WarnContext(ctx, "admin login attempted but no admin credential is configured")
		return auth.AccessTokenResponse{}, auth.ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(loginReq.Email))
	emailMatches := subtle.ConstantTimeCompare([]byte(email), []byte(a.adminEmail)) == 1

	// always run bcrypt so a wrong email costs the same as a wrong password
	passwordErr := bcrypt.CompareHashAndPassword(a.adminPasswordHash, []byte(loginReq.Password))
	if !emailMatches || passwordErr != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(a.adminEmail, jwt.RoleAdmin)
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}

	slog.InfoContext(ctx, "admin logged in")
	return auth.AccessTokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
	}, nil
}
