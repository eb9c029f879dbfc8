package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. A token issued for one purpose is never accepted for
// another: a refresh token cannot authenticate an API call, and an email
// confirmation link cannot be replayed as a session.
const (
	ScopeAccess  = "access"
	ScopeRefresh = "refresh"
	ScopeEmail   = "email"
)

var (
	// ErrInvalidToken indicates the token failed signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongScope indicates a valid token presented for the wrong purpose.
	ErrWrongScope = errors.New("token scope mismatch")
)

// Claims carries the subject email and the token's scope alongside the
// registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Scope string `json:"scope"`
}

// TokenManager issues and verifies HS256-signed tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

// NewTokenManager creates a TokenManager with the given signing secret
// and per-scope lifetimes.
func NewTokenManager(secret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
	}
}

// NewAccessToken issues a short-lived API session token.
func (m *TokenManager) NewAccessToken(email string) (string, error) {
	return m.issue(email, ScopeAccess, m.accessTTL)
}

// NewRefreshToken issues a long-lived token used only to mint new access tokens.
func (m *TokenManager) NewRefreshToken(email string) (string, error) {
	return m.issue(email, ScopeRefresh, m.refreshTTL)
}

// NewEmailToken issues a token embedded in confirmation and reset links.
func (m *TokenManager) NewEmailToken(email string) (string, error) {
	return m.issue(email, ScopeEmail, m.emailTTL)
}

func (m *TokenManager) issue(email, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Scope: scope,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the token and returns the subject email.
// The token must carry exactly the wanted scope.
func (m *TokenManager) ParseToken(tokenString, wantScope string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Scope != wantScope {
		return "", ErrWrongScope
	}

	return claims.Email, nil
}
