package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contactdex/contactdex/internal/auth"
	"github.com/contactdex/contactdex/internal/handler/dto"
	"github.com/contactdex/contactdex/internal/service"
)

// ContactHandler handles HTTP requests for contact operations. All
// routes require an authenticated user in the request context.
type ContactHandler struct {
	svc    *service.ContactService
	logger *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/contacts.
//
// Query parameters: skip, limit, first_name, last_name, email,
// birthdays. The filters dispatch in a fixed order; see
// service.ContactService.List.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	query := r.URL.Query()

	input := service.ListContactsInput{
		Skip:      0,
		Limit:     20,
		FirstName: query.Get("first_name"),
		LastName:  query.Get("last_name"),
		Email:     query.Get("email"),
	}

	if s := query.Get("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 0 {
			input.Skip = parsed
		}
	}
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			input.Limit = parsed
		}
	}
	if b := query.Get("birthdays"); b != "" {
		if parsed, err := strconv.Atoi(b); err == nil && parsed > 0 {
			input.BirthdaysWithin = parsed
		}
	}

	contacts, err := h.svc.List(r.Context(), input, user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactListResponse(contacts))
}

// Get handles GET /api/contacts/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.svc.Get(r.Context(), id, user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	var req dto.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(time.Now()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	contact, err := h.svc.Create(r.Context(), service.CreateContactInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth.Time,
	}, user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_created", "contact_id", contact.ID, "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToContactResponse(contact))
}

// Update handles PUT /api/contacts/{id}. It replaces every field;
// optional fields omitted from the body are cleared.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var req dto.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(time.Now()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	contact, err := h.svc.Update(r.Context(), id, service.CreateContactInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth.Time,
	}, user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_updated", "contact_id", contact.ID, "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// UpdateDateOfBirth handles PATCH /api/contacts/{id}. Only the date of
// birth changes; everything else is left alone.
func (h *ContactHandler) UpdateDateOfBirth(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var req dto.ContactDateOfBirthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := req.Validate(time.Now()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	contact, err := h.svc.UpdateDateOfBirth(r.Context(), id, req.DateOfBirth.Time, user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_dob_updated", "contact_id", contact.ID, "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// Delete handles DELETE /api/contacts/{id}. The removed contact is
// returned in the response body.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.svc.Remove(r.Context(), id, user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_deleted", "contact_id", id, "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToContactResponse(contact))
}

// contactID parses the {id} route parameter. On failure it writes a 400
// and returns ok=false.
func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Contact ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *ContactHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
