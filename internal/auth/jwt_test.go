package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	tests := []struct {
		name  string
		issue func(string) (string, error)
		scope string
	}{
		{"access", m.NewAccessToken, ScopeAccess},
		{"refresh", m.NewRefreshToken, ScopeRefresh},
		{"email", m.NewEmailToken, ScopeEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := tt.issue("user@example.com")
			if err != nil {
				t.Fatalf("issue token: %v", err)
			}

			email, err := m.ParseToken(token, tt.scope)
			if err != nil {
				t.Fatalf("parse token: %v", err)
			}
			if email != "user@example.com" {
				t.Errorf("expected subject email, got %q", email)
			}
		})
	}
}

func TestTokenManager_ScopeMismatch(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	refresh, err := m.NewRefreshToken("user@example.com")
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	if _, err := m.ParseToken(refresh, ScopeAccess); !errors.Is(err, ErrWrongScope) {
		t.Fatalf("expected ErrWrongScope, got %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	other := NewTokenManager("other-secret", time.Minute, time.Minute, time.Minute)

	token, err := m.NewAccessToken("user@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := other.ParseToken(token, ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("test-secret", -time.Minute, -time.Minute, -time.Minute)

	token, err := m.NewAccessToken("user@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := m.ParseToken(token, ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	if _, err := m.ParseToken("not-a-jwt", ScopeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
