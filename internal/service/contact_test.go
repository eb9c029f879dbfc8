package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/contactdex/contactdex/internal/model"
)

const (
	ownerID    int64 = 1
	strangerID int64 = 2
)

func newContactFixture(t *testing.T) (*ContactService, *fakeContactRepo) {
	t.Helper()

	repo := newFakeContactRepo()
	svc := NewContactService(repo, nil)
	return svc, repo
}

func addContact(t *testing.T, svc *ContactService, userID int64, firstName, lastName string, birth time.Time) *model.Contact {
	t.Helper()

	contact, err := svc.Create(context.Background(), CreateContactInput{
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: birth,
	}, userID)
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	return contact
}

func birthday(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestContactService_List_PlainListing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	for i, name := range []string{"A", "B", "C", "D", "E"} {
		addContact(t, svc, ownerID, name, "Own", birthday(1990, time.January, i+1))
	}
	addContact(t, svc, strangerID, "X", "Other", birthday(1990, time.January, 1))

	got, err := svc.List(ctx, ListContactsInput{Skip: 1, Limit: 2}, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(got))
	}
	if got[0].FirstName != "B" || got[1].FirstName != "C" {
		t.Fatalf("expected B, C with skip=1 limit=2, got %s, %s", got[0].FirstName, got[1].FirstName)
	}
	for _, c := range got {
		if c.UserID != ownerID {
			t.Fatal("listing leaked another user's contact")
		}
	}
}

func TestContactService_List_DispatchPrecedence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	addContact(t, svc, ownerID, "Anna", "Zimmer", birthday(1990, time.June, 1))
	addContact(t, svc, ownerID, "Bruno", "Adler", birthday(1990, time.June, 2))

	// first_name takes precedence over last_name and email.
	got, err := svc.List(ctx, ListContactsInput{FirstName: "Ann", LastName: "Adl", Email: "x"}, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].FirstName != "Anna" {
		t.Fatalf("expected first_name branch to win, got %+v", got)
	}

	// last_name next.
	got, err = svc.List(ctx, ListContactsInput{LastName: "Adl", Email: "x"}, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].LastName != "Adler" {
		t.Fatalf("expected last_name branch, got %+v", got)
	}
}

// Skip and limit are only honored by the plain listing; the prefix
// branches return every match. That asymmetry is long-standing API
// behavior and deliberately preserved.
func TestContactService_List_PrefixIgnoresSkipLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	for i := 0; i < 4; i++ {
		addContact(t, svc, ownerID, "Ann", "Doe", birthday(1990, time.June, i+1))
	}

	got, err := svc.List(ctx, ListContactsInput{FirstName: "Ann", Skip: 2, Limit: 1}, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected all 4 prefix matches regardless of skip/limit, got %d", len(got))
	}
}

func TestContactService_List_BirthdayWindowAcrossYearBoundary(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)
	svc.now = func() time.Time { return time.Date(2023, time.December, 28, 10, 30, 0, 0, time.UTC) }

	dec30 := addContact(t, svc, ownerID, "Dec", "Thirty", birthday(1990, time.December, 30))
	jan2 := addContact(t, svc, ownerID, "Jan", "Second", birthday(1985, time.January, 2))
	addContact(t, svc, ownerID, "Jul", "First", birthday(1999, time.July, 1))
	addContact(t, svc, strangerID, "Dec", "Other", birthday(1990, time.December, 30))

	got, err := svc.List(ctx, ListContactsInput{BirthdaysWithin: 7}, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != dec30.ID || got[1].ID != jan2.ID {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestContactService_List_BirthdayWindowSameYear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)
	svc.now = func() time.Time { return time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC) }

	inside := addContact(t, svc, ownerID, "In", "Window", birthday(1992, time.June, 12))
	addContact(t, svc, ownerID, "Out", "Side", birthday(1992, time.June, 20))

	got, err := svc.List(ctx, ListContactsInput{BirthdaysWithin: 7}, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside.ID {
		t.Fatalf("expected only the in-window contact, got %+v", got)
	}
}

func TestContactService_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	contact := addContact(t, svc, ownerID, "Jane", "Doe", birthday(1990, time.June, 1))

	if _, err := svc.Get(ctx, contact.ID, strangerID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound on get, got %v", err)
	}
	if _, err := svc.Update(ctx, contact.ID, CreateContactInput{FirstName: "X"}, strangerID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound on update, got %v", err)
	}
	if _, err := svc.UpdateDateOfBirth(ctx, contact.ID, birthday(2000, time.January, 1), strangerID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound on date update, got %v", err)
	}
	if _, err := svc.Remove(ctx, contact.ID, strangerID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound on remove, got %v", err)
	}

	// The owner still sees the record untouched.
	got, err := svc.Get(ctx, contact.ID, ownerID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if got.FirstName != "Jane" {
		t.Fatalf("expected contact unchanged, got %+v", got)
	}
}

func TestContactService_Update_OverwritesAllFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	email := "old@example.com"
	phone := "+420 111 222 333"
	contact, err := svc.Create(ctx, CreateContactInput{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       &email,
		Phone:       &phone,
		DateOfBirth: birthday(1990, time.June, 1),
	}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A full update with absent optional fields clears them.
	updated, err := svc.Update(ctx, contact.ID, CreateContactInput{
		FirstName:   "Janet",
		LastName:    "Smith",
		DateOfBirth: birthday(1991, time.May, 5),
	}, ownerID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Janet" || updated.LastName != "Smith" {
		t.Fatalf("unexpected names: %s %s", updated.FirstName, updated.LastName)
	}
	if updated.Email != nil || updated.Phone != nil {
		t.Fatal("expected optional fields to be overwritten, not merged")
	}
}

func TestContactService_UpdateDateOfBirth_Narrow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	email := "keep@example.com"
	contact, err := svc.Create(ctx, CreateContactInput{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       &email,
		DateOfBirth: birthday(1990, time.June, 1),
	}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newBirth := birthday(1990, time.July, 2)
	updated, err := svc.UpdateDateOfBirth(ctx, contact.ID, newBirth, ownerID)
	if err != nil {
		t.Fatalf("update date of birth: %v", err)
	}
	if !updated.DateOfBirth.Equal(newBirth) {
		t.Fatalf("expected new birth date, got %v", updated.DateOfBirth)
	}
	if updated.Email == nil || *updated.Email != email {
		t.Fatal("expected other fields untouched by narrow update")
	}
}

func TestContactService_Remove_Idempotence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContactFixture(t)

	contact := addContact(t, svc, ownerID, "Jane", "Doe", birthday(1990, time.June, 1))

	deleted, err := svc.Remove(ctx, contact.ID, ownerID)
	if err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if deleted.ID != contact.ID {
		t.Fatalf("expected deleted record %d, got %d", contact.ID, deleted.ID)
	}

	if _, err := svc.Remove(ctx, contact.ID, ownerID); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound on second remove, got %v", err)
	}
}
