package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/contactdex/contactdex/internal/auth"
	"github.com/contactdex/contactdex/internal/handler/dto"
	"github.com/contactdex/contactdex/internal/mail"
	"github.com/contactdex/contactdex/internal/model"
	"github.com/contactdex/contactdex/internal/service"
)

// AuthHandler handles registration, login, token refresh, email
// confirmation and password reset.
type AuthHandler struct {
	users  *service.UserService
	tokens *auth.TokenManager
	mail   mail.Sender
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, tokens *auth.TokenManager, sender mail.Sender, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		mail:   sender,
		logger: logger,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	user, err := h.users.Create(r.Context(), service.CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "ACCOUNT_EXISTS", "Account already exists")
			return
		}
		h.logger.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.sendConfirmation(r, user)

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.SignupResponse{
		User:   dto.ToUserResponse(user),
		Detail: "User successfully created. Check your email for confirmation.",
	})
}

// Login handles POST /api/auth/login. It requires a confirmed email and
// issues an access and refresh token pair. The refresh token is
// persisted so Refresh can check it against the stored value.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	match, err := auth.VerifyPassword(req.Password, user.Password)
	if err != nil || !match {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	if !user.Confirmed {
		writeError(w, http.StatusUnauthorized, "EMAIL_NOT_CONFIRMED", "Email not confirmed")
		return
	}

	h.issueTokens(w, r, user)
}

// Refresh handles GET /api/auth/refresh_token. The refresh token comes
// in the Authorization header and must match the one stored for the
// user; a mismatch clears the stored token so a stolen pair cannot be
// replayed.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}

	email, err := h.tokens.ParseToken(token, auth.ScopeRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}

	// Read the stored token from the database, not the cache, so a
	// rotation that just happened is always visible.
	user, err := h.users.GetByEmailUncached(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}

	if user.RefreshToken == nil || *user.RefreshToken != token {
		_ = h.users.UpdateRefreshToken(r.Context(), user, nil)
		writeError(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
		return
	}

	h.issueTokens(w, r, user)
}

// ConfirmEmail handles GET /api/auth/confirm/{token}.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.tokens.ParseToken(chi.URLParam(r, "token"), auth.ScopeEmail)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VERIFICATION_ERROR", "Verification error")
		return
	}

	user, err := h.users.GetByEmailUncached(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VERIFICATION_ERROR", "Verification error")
		return
	}

	if user.Confirmed {
		writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Your email is already confirmed"})
		return
	}

	if err := h.users.ConfirmEmail(r.Context(), email); err != nil {
		h.logger.Error("email confirmation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("email_confirmed", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Email confirmed"})
}

// RequestEmail handles POST /api/auth/request_email. It re-sends the
// confirmation email. The response does not reveal whether the account
// exists.
func (h *AuthHandler) RequestEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err == nil {
		if user.Confirmed {
			writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Your email is already confirmed"})
			return
		}
		h.sendConfirmation(r, user)
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Check your email for confirmation"})
}

// RequestPasswordReset handles POST /api/auth/password/reset.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if user, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		token, err := h.tokens.NewEmailToken(user.Email)
		if err != nil {
			h.logger.Error("reset token issue failed", "error", err)
		} else if err := h.mail.SendPasswordResetEmail(r.Context(), user.Email, user.Username, token); err != nil {
			h.logger.Error("password reset email failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Check your email for the reset link"})
}

// ApplyPasswordReset handles POST /api/auth/password/reset/{token}.
func (h *AuthHandler) ApplyPasswordReset(w http.ResponseWriter, r *http.Request) {
	email, err := h.tokens.ParseToken(chi.URLParam(r, "token"), auth.ScopeEmail)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VERIFICATION_ERROR", "Verification error")
		return
	}

	var req dto.PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.users.GetByEmailUncached(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VERIFICATION_ERROR", "Verification error")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user, hash); err != nil {
		h.logger.Error("password update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("password_reset", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.DetailResponse{Detail: "Password updated"})
}

// issueTokens creates a fresh token pair, persists the refresh token
// and writes the pair to the response.
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *model.User) {
	access, err := h.tokens.NewAccessToken(user.Email)
	if err != nil {
		h.logger.Error("access token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	refresh, err := h.tokens.NewRefreshToken(user.Email)
	if err != nil {
		h.logger.Error("refresh token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.users.UpdateRefreshToken(r.Context(), user, &refresh); err != nil {
		h.logger.Error("refresh token store failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// sendConfirmation issues an email-scoped token and sends the
// confirmation mail. Failures are logged, not surfaced; the user can
// re-request the email later.
func (h *AuthHandler) sendConfirmation(r *http.Request, user *model.User) {
	token, err := h.tokens.NewEmailToken(user.Email)
	if err != nil {
		h.logger.Error("email token issue failed", "error", err)
		return
	}
	if err := h.mail.SendConfirmationEmail(r.Context(), user.Email, user.Username, token); err != nil {
		h.logger.Error("confirmation email failed", "error", err)
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
