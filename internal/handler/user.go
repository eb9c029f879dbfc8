package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/contactdex/contactdex/internal/auth"
	"github.com/contactdex/contactdex/internal/handler/dto"
	"github.com/contactdex/contactdex/internal/service"
	"github.com/contactdex/contactdex/internal/storage"
)

// maxAvatarSize limits avatar uploads to 5 MiB.
const maxAvatarSize = 5 << 20

// UserHandler handles the current-user endpoints.
type UserHandler struct {
	users   *service.UserService
	avatars storage.AvatarStore
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, avatars storage.AvatarStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		avatars: avatars,
		logger:  logger,
	}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateAvatar handles PATCH /api/users/avatar. It accepts a multipart
// form with a "file" field, stores the image in object storage and
// writes the new URL to the user record.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with a file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "Avatar must be an image")
		return
	}

	url, err := h.avatars.SaveAvatar(r.Context(), file, contentType)
	if err != nil {
		h.logger.Error("avatar upload failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	updated, err := h.users.UpdateAvatar(r.Context(), user.Email, url)
	if err != nil {
		h.logger.Error("avatar update failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("avatar_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(updated))
}
