package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/contactdex/contactdex/internal/model"
	"github.com/contactdex/contactdex/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	f.users[user.Email] = user.Clone()
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (f *fakeUserRepo) UpdateRefreshToken(_ context.Context, email string, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.RefreshToken = token
	return nil
}

func (f *fakeUserRepo) ConfirmEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Confirmed = true
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Password = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(_ context.Context, email, avatarURL string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.Avatar = &avatarURL
	return user.Clone(), nil
}

// fakeUserCache is an in-memory UserCache. Set failSet/failDelete to
// simulate an unreachable cache.
type fakeUserCache struct {
	mu         sync.Mutex
	entries    map[string]*model.User
	failGet    bool
	failSet    bool
	failDelete bool
	deletes    int
}

var errCacheDown = errors.New("cache unreachable")

func newFakeUserCache() *fakeUserCache {
	return &fakeUserCache{entries: make(map[string]*model.User)}
}

func (f *fakeUserCache) GetUser(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet {
		return nil, errCacheDown
	}
	user, ok := f.entries[email]
	if !ok {
		return nil, nil
	}
	return user.Clone(), nil
}

func (f *fakeUserCache) SetUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSet {
		return errCacheDown
	}
	f.entries[user.Email] = user.Clone()
	return nil
}

func (f *fakeUserCache) DeleteUser(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes++
	if f.failDelete {
		return errCacheDown
	}
	delete(f.entries, email)
	return nil
}

func (f *fakeUserCache) contains(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[email]
	return ok
}

// fakeContactRepo is an in-memory ContactRepository with the same
// semantics as the SQL implementation: id ordering, case-sensitive
// prefixes, ownership scoping.
type fakeContactRepo struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]*model.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[int64]*model.Contact)}
}

func (f *fakeContactRepo) CreateContact(_ context.Context, contact *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	contact.ID = f.nextID
	contact.CreatedAt = time.Now().UTC()
	clone := *contact
	f.contacts[contact.ID] = &clone
	return nil
}

func (f *fakeContactRepo) GetContact(_ context.Context, id, userID int64) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	contact, ok := f.contacts[id]
	if !ok || contact.UserID != userID {
		return nil, repository.ErrContactNotFound
	}
	clone := *contact
	return &clone, nil
}

func (f *fakeContactRepo) ListContacts(_ context.Context, userID int64, skip, limit int) ([]*model.Contact, error) {
	owned := f.ownedSorted(userID)
	if skip >= len(owned) {
		return nil, nil
	}
	owned = owned[skip:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (f *fakeContactRepo) ListContactsByPrefix(_ context.Context, userID int64, column, prefix string) ([]*model.Contact, error) {
	var matched []*model.Contact
	for _, contact := range f.ownedSorted(userID) {
		var value string
		switch column {
		case "first_name":
			value = contact.FirstName
		case "last_name":
			value = contact.LastName
		case "email":
			if contact.Email != nil {
				value = *contact.Email
			}
		}
		if strings.HasPrefix(value, prefix) {
			matched = append(matched, contact)
		}
	}
	return matched, nil
}

func (f *fakeContactRepo) ListAllContacts(_ context.Context, userID int64) ([]*model.Contact, error) {
	return f.ownedSorted(userID), nil
}

func (f *fakeContactRepo) UpdateContact(_ context.Context, contact *model.Contact) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.contacts[contact.ID]
	if !ok || existing.UserID != contact.UserID {
		return nil, repository.ErrContactNotFound
	}
	existing.FirstName = contact.FirstName
	existing.LastName = contact.LastName
	existing.Email = contact.Email
	existing.Phone = contact.Phone
	existing.DateOfBirth = contact.DateOfBirth
	clone := *existing
	return &clone, nil
}

func (f *fakeContactRepo) UpdateContactDateOfBirth(_ context.Context, id, userID int64, dateOfBirth time.Time) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.contacts[id]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrContactNotFound
	}
	existing.DateOfBirth = dateOfBirth
	clone := *existing
	return &clone, nil
}

func (f *fakeContactRepo) DeleteContact(_ context.Context, id, userID int64) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.contacts[id]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrContactNotFound
	}
	delete(f.contacts, id)
	return existing, nil
}

func (f *fakeContactRepo) ownedSorted(userID int64) []*model.Contact {
	f.mu.Lock()
	defer f.mu.Unlock()

	var owned []*model.Contact
	for _, contact := range f.contacts {
		if contact.UserID == userID {
			clone := *contact
			owned = append(owned, &clone)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })
	return owned
}
