package dto

import (
	"time"

	"github.com/contactdex/contactdex/internal/model"
)

// ContactRequest represents the body for creating or fully updating a
// contact. Used as-is for PUT: omitted optional fields clear the stored
// values.
type ContactRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth Date    `json:"date_of_birth"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// Validate checks field constraints. The date of birth must be in the
// past.
func (r *ContactRequest) Validate(now time.Time) error {
	if r.FirstName == "" {
		return &ValidationError{Field: "first_name", Message: "is required"}
	}
	if len(r.FirstName) > 50 {
		return &ValidationError{Field: "first_name", Message: "must be at most 50 characters"}
	}
	if r.LastName == "" {
		return &ValidationError{Field: "last_name", Message: "is required"}
	}
	if len(r.LastName) > 50 {
		return &ValidationError{Field: "last_name", Message: "must be at most 50 characters"}
	}
	if r.Phone != nil && len(*r.Phone) > 20 {
		return &ValidationError{Field: "phone", Message: "must be at most 20 characters"}
	}
	return validatePastDate(r.DateOfBirth, now)
}

// ContactDateOfBirthRequest represents the body for the narrow PATCH
// that updates only the date of birth.
type ContactDateOfBirthRequest struct {
	DateOfBirth Date `json:"date_of_birth"`
}

func (r *ContactDateOfBirthRequest) Validate(now time.Time) error {
	return validatePastDate(r.DateOfBirth, now)
}

func validatePastDate(d Date, now time.Time) error {
	if d.IsZero() {
		return &ValidationError{Field: "date_of_birth", Message: "is required"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !d.Time.Before(today) {
		return &ValidationError{Field: "date_of_birth", Message: "must be in the past"}
	}
	return nil
}

// ContactResponse represents a contact in API responses.
type ContactResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth Date      `json:"date_of_birth"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToContactResponse converts a Contact model to ContactResponse DTO.
func ToContactResponse(c *model.Contact) *ContactResponse {
	return &ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DateOfBirth: Date{c.DateOfBirth},
		Email:       c.Email,
		Phone:       c.Phone,
		CreatedAt:   c.CreatedAt,
	}
}

// ToContactListResponse converts a slice of Contact models.
func ToContactListResponse(contacts []*model.Contact) []*ContactResponse {
	out := make([]*ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = ToContactResponse(c)
	}
	return out
}
