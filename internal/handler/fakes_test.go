package handler

import (
	"context"
	"sync"
	"time"

	"github.com/contactdex/contactdex/internal/model"
	"github.com/contactdex/contactdex/internal/repository"
)

// fakeUserRepo is an in-memory service.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.Email] = user.Clone()
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *fakeUserRepo) UpdateRefreshToken(_ context.Context, email string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *fakeUserRepo) ConfirmEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Confirmed = true
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, email, avatarURL string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Avatar = &avatarURL
	return u.Clone(), nil
}

// fakeUserCache is an in-memory service.UserCache.
type fakeUserCache struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserCache() *fakeUserCache {
	return &fakeUserCache{users: make(map[string]*model.User)}
}

func (c *fakeUserCache) GetUser(_ context.Context, email string) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u, ok := c.users[email]; ok {
		return u.Clone(), nil
	}
	return nil, nil
}

func (c *fakeUserCache) SetUser(_ context.Context, user *model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.Email] = user.Clone()
	return nil
}

func (c *fakeUserCache) DeleteUser(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, email)
	return nil
}

// fakeMail records sent emails instead of delivering them.
type fakeMail struct {
	mu                 sync.Mutex
	confirmationTokens []string
	resetTokens        []string
}

func (m *fakeMail) SendConfirmationEmail(_ context.Context, _, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmationTokens = append(m.confirmationTokens, token)
	return nil
}

func (m *fakeMail) SendPasswordResetEmail(_ context.Context, _, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetTokens = append(m.resetTokens, token)
	return nil
}

func (m *fakeMail) lastConfirmationToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.confirmationTokens) == 0 {
		return ""
	}
	return m.confirmationTokens[len(m.confirmationTokens)-1]
}

func (m *fakeMail) lastResetToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resetTokens) == 0 {
		return ""
	}
	return m.resetTokens[len(m.resetTokens)-1]
}

// fakeContactRepo is an in-memory service.ContactRepository with the
// same ordering and ownership semantics as the Postgres implementation.
type fakeContactRepo struct {
	mu       sync.Mutex
	nextID   int64
	contacts []*model.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{nextID: 1}
}

func (r *fakeContactRepo) CreateContact(_ context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	contact.ID = r.nextID
	r.nextID++
	contact.CreatedAt = time.Now()
	clone := *contact
	r.contacts = append(r.contacts, &clone)
	return nil
}

func (r *fakeContactRepo) GetContact(_ context.Context, id, userID int64) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.ID == id && c.UserID == userID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrContactNotFound
}

func (r *fakeContactRepo) ListContacts(_ context.Context, userID int64, skip, limit int) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Contact
	for _, c := range r.contacts {
		if c.UserID != userID {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if len(out) == limit {
			break
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeContactRepo) ListContactsByPrefix(_ context.Context, userID int64, column, prefix string) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Contact
	for _, c := range r.contacts {
		if c.UserID != userID {
			continue
		}
		var value string
		switch column {
		case "first_name":
			value = c.FirstName
		case "last_name":
			value = c.LastName
		case "email":
			if c.Email != nil {
				value = *c.Email
			}
		}
		if len(value) >= len(prefix) && value[:len(prefix)] == prefix {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) ListAllContacts(_ context.Context, userID int64) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) UpdateContact(_ context.Context, contact *model.Contact) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.ID == contact.ID && c.UserID == contact.UserID {
			c.FirstName = contact.FirstName
			c.LastName = contact.LastName
			c.Email = contact.Email
			c.Phone = contact.Phone
			c.DateOfBirth = contact.DateOfBirth
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrContactNotFound
}

func (r *fakeContactRepo) UpdateContactDateOfBirth(_ context.Context, id, userID int64, dateOfBirth time.Time) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.ID == id && c.UserID == userID {
			c.DateOfBirth = dateOfBirth
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrContactNotFound
}

func (r *fakeContactRepo) DeleteContact(_ context.Context, id, userID int64) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.contacts {
		if c.ID == id && c.UserID == userID {
			r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
			return c, nil
		}
	}
	return nil, repository.ErrContactNotFound
}
