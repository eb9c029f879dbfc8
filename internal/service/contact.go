package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contactdex/contactdex/internal/metrics"
	"github.com/contactdex/contactdex/internal/model"
	"github.com/contactdex/contactdex/internal/repository"
)

// ErrContactNotFound covers both a missing contact and a contact owned by
// someone else; callers cannot tell the two apart.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository is the durable store for contacts.
type ContactRepository interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
	GetContact(ctx context.Context, id, userID int64) (*model.Contact, error)
	ListContacts(ctx context.Context, userID int64, skip, limit int) ([]*model.Contact, error)
	ListContactsByPrefix(ctx context.Context, userID int64, column, prefix string) ([]*model.Contact, error)
	ListAllContacts(ctx context.Context, userID int64) ([]*model.Contact, error)
	UpdateContact(ctx context.Context, contact *model.Contact) (*model.Contact, error)
	UpdateContactDateOfBirth(ctx context.Context, id, userID int64, dateOfBirth time.Time) (*model.Contact, error)
	DeleteContact(ctx context.Context, id, userID int64) (*model.Contact, error)
}

// ContactService handles contact queries and mutations. Every method
// takes the owner's user id and scopes all access to it.
type ContactService struct {
	repo    ContactRepository
	metrics metrics.Recorder

	// now is replaceable in tests so birthday windows are deterministic.
	now func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(repo ContactRepository, recorder metrics.Recorder) *ContactService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ContactService{
		repo:    repo,
		metrics: recorder,
		now:     time.Now,
	}
}

// ListContactsInput defines the filters for List.
type ListContactsInput struct {
	Skip      int
	Limit     int
	FirstName string
	LastName  string
	Email     string
	// BirthdaysWithin is a number of days from today; 0 disables the
	// birthday window branch.
	BirthdaysWithin int
}

// List returns contacts owned by userID according to a fixed dispatch
// order; only the first matching branch runs:
//
//  1. no text filters and no window: plain listing with skip/limit
//  2. first-name prefix
//  3. last-name prefix
//  4. email prefix
//  5. birthday window
//
// Skip and limit apply only to the plain listing. The prefix branches
// ignore them, matching the long-standing API behavior that clients
// depend on.
func (s *ContactService) List(ctx context.Context, input ListContactsInput, userID int64) ([]*model.Contact, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveContactListDuration(time.Since(start))
	}()

	switch {
	case input.FirstName == "" && input.LastName == "" && input.Email == "" && input.BirthdaysWithin == 0:
		return s.repo.ListContacts(ctx, userID, input.Skip, input.Limit)
	case input.FirstName != "":
		return s.repo.ListContactsByPrefix(ctx, userID, "first_name", input.FirstName)
	case input.LastName != "":
		return s.repo.ListContactsByPrefix(ctx, userID, "last_name", input.LastName)
	case input.Email != "":
		return s.repo.ListContactsByPrefix(ctx, userID, "email", input.Email)
	default:
		return s.listUpcomingBirthdays(ctx, userID, input.BirthdaysWithin)
	}
}

// listUpcomingBirthdays returns contacts whose birthday falls within the
// next `days` days, inclusive of both ends. The window filter runs in
// application code over the owner's full contact set rather than as a
// generated SQL expression over date parts; see Contact.BirthdayInWindow
// for the year re-anchoring rules.
func (s *ContactService) listUpcomingBirthdays(ctx context.Context, userID int64, days int) ([]*model.Contact, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveBirthdayWindowDuration(time.Since(start))
	}()

	contacts, err := s.repo.ListAllContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()
	windowEnd := today.AddDate(0, 0, days)

	matched := make([]*model.Contact, 0, len(contacts))
	for _, contact := range contacts {
		if contact.BirthdayInWindow(today, windowEnd) {
			matched = append(matched, contact)
		}
	}

	return matched, nil
}

// Get returns the contact with the given id if userID owns it.
func (s *ContactService) Get(ctx context.Context, id, userID int64) (*model.Contact, error) {
	contact, err := s.repo.GetContact(ctx, id, userID)
	if err != nil {
		return nil, mapContactErr(err)
	}
	return contact, nil
}

// CreateContactInput defines input for creating or fully updating a contact.
type CreateContactInput struct {
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth time.Time
}

// Create persists a new contact owned by userID. Fields are copied
// verbatim; validation happens at the transport layer.
func (s *ContactService) Create(ctx context.Context, input CreateContactInput, userID int64) (*model.Contact, error) {
	contact := &model.Contact{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
		UserID:      userID,
	}

	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.metrics.IncContactCreated()
	return contact, nil
}

// Update overwrites all mutable fields of the contact. There is no
// partial update here: absent optional fields become NULL.
func (s *ContactService) Update(ctx context.Context, id int64, input CreateContactInput, userID int64) (*model.Contact, error) {
	updated, err := s.repo.UpdateContact(ctx, &model.Contact{
		ID:          id,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
		UserID:      userID,
	})
	if err != nil {
		return nil, mapContactErr(err)
	}

	s.metrics.IncContactUpdated()
	return updated, nil
}

// UpdateDateOfBirth overwrites only the contact's date of birth.
func (s *ContactService) UpdateDateOfBirth(ctx context.Context, id int64, dateOfBirth time.Time, userID int64) (*model.Contact, error) {
	updated, err := s.repo.UpdateContactDateOfBirth(ctx, id, userID, dateOfBirth)
	if err != nil {
		return nil, mapContactErr(err)
	}

	s.metrics.IncContactUpdated()
	return updated, nil
}

// Remove deletes the contact and returns the deleted record.
func (s *ContactService) Remove(ctx context.Context, id, userID int64) (*model.Contact, error) {
	deleted, err := s.repo.DeleteContact(ctx, id, userID)
	if err != nil {
		return nil, mapContactErr(err)
	}

	s.metrics.IncContactDeleted()
	return deleted, nil
}

func mapContactErr(err error) error {
	if errors.Is(err, repository.ErrContactNotFound) {
		return ErrContactNotFound
	}
	return err
}
