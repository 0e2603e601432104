package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jonboulle/clockwork"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	RoleAdmin       = "admin"
)

type Service interface {
	GenerateAccessToken(email string, role string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	clock                 clockwork.Clock
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService signs HS256 tokens with secretKey. Expiry checks during
// verification use clock so tests can move time.
func NewJWTService(secretKey string, accessTokenExpiration time.Duration, clock clockwork.Clock) (Service, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("jwt secret key is empty")
	}
	if accessTokenExpiration <= 0 {
		return nil, fmt.Errorf("invalid access token expiration: %s", accessTokenExpiration)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		clock:                 clock,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil,
			jwt.WithAcceptableSkew(30*time.Second),
			jwt.WithClock(jwt.ClockFunc(clock.Now)),
		),
	}, nil
}

func (j *JWTService) GenerateAccessToken(email string, role string) (token string, expiresAt int64, err error) {
	now := j.clock.Now()
	expiresAt = now.Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"sub":   email,
		"email": email,
		"role":  role,
		"type":  TokenTypeAccess,
		"iat":   now.Unix(),
		"exp":   expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}
