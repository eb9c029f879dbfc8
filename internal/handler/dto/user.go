package dto

import (
	"strings"
	"time"

	"github.com/contactdex/contactdex/internal/model"
)

// SignupRequest represents the body for registering a new account.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignupRequest) Validate() error {
	if l := len(r.Username); l < 5 || l > 50 {
		return &ValidationError{Field: "username", Message: "must be 5 to 50 characters"}
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validatePassword(r.Password)
}

// LoginRequest represents the body for obtaining a token pair.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest represents the body for endpoints keyed by email only.
type EmailRequest struct {
	Email string `json:"email"`
}

func (r *EmailRequest) Validate() error {
	return validateEmail(r.Email)
}

// PasswordRequest represents the body for applying a new password.
type PasswordRequest struct {
	Password string `json:"password"`
}

func (r *PasswordRequest) Validate() error {
	return validatePassword(r.Password)
}

func validateEmail(email string) error {
	if l := len(email); l < 10 || l > 250 {
		return &ValidationError{Field: "email", Message: "must be 10 to 250 characters"}
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

func validatePassword(password string) error {
	if l := len(password); l < 8 || l > 100 {
		return &ValidationError{Field: "password", Message: "must be 8 to 100 characters"}
	}
	return nil
}

// TokenResponse represents an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupResponse wraps the created user with a human-readable detail.
type SignupResponse struct {
	User   *UserResponse `json:"user"`
	Detail string        `json:"detail"`
}

// DetailResponse carries a human-readable status message.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Confirmed: u.Confirmed,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
