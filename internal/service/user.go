// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/contactdex/contactdex/internal/metrics"
	"github.com/contactdex/contactdex/internal/model"
	"github.com/contactdex/contactdex/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository is the durable store for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRefreshToken(ctx context.Context, email string, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateAvatar(ctx context.Context, email, avatarURL string) (*model.User, error)
}

// UserCache fronts the durable store for reads by email. Get returns
// (nil, nil) on a miss. Injected as an interface so tests substitute an
// in-memory fake.
type UserCache interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, email string) error
}

// UserService implements the cache-aside protocol around user records.
//
// Reads go cache-first and repopulate on a miss. Mutations always resolve
// the target through the uncached path, write through to the durable
// store, then delete the cache entry; they never write the new value into
// the cache - the next read repairs it. Invalidation is best-effort: a
// cache failure is logged and counted but never fails the mutation.
type UserService struct {
	repo    UserRepository
	cache   UserCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(repo UserRepository, cache UserCache, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: recorder,
	}
}

// GetByEmail looks a user up by email, cache first.
// On a miss the durable store is queried and, only when the user exists,
// the result is written back to the cache. Absence is never cached.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	cached, err := s.cache.GetUser(ctx, email)
	if err == nil && cached != nil {
		s.metrics.IncUserCacheHit()
		return cached, nil
	}
	if err != nil {
		// A broken cache degrades to a durable-store read.
		s.logger.Warn("user cache read failed", "email", email, "error", err)
	}
	s.metrics.IncUserCacheMiss()

	user, err := s.GetByEmailUncached(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetUser(ctx, user.Clone()); err != nil {
		s.logger.Warn("user cache populate failed", "email", email, "error", err)
	}

	return user, nil
}

// GetByEmailUncached looks a user up directly in the durable store.
// Every mutation path resolves its target through here so it never acts
// on stale cached data.
func (s *UserService) GetByEmailUncached(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUserInput defines input for registering a user.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
}

// Create persists a new user. Any stray cache entry for the email is
// invalidated; one should not normally exist.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.PasswordHash,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.invalidate(ctx, user.Email)

	return user, nil
}

// UpdateRefreshToken stores (or clears, with nil) the user's refresh token.
func (s *UserService) UpdateRefreshToken(ctx context.Context, user *model.User, token *string) error {
	resolved, err := s.GetByEmailUncached(ctx, user.Email)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateRefreshToken(ctx, resolved.Email, token); err != nil {
		return err
	}

	s.invalidate(ctx, resolved.Email)
	return nil
}

// ConfirmEmail marks the user's email address as confirmed.
func (s *UserService) ConfirmEmail(ctx context.Context, email string) error {
	resolved, err := s.GetByEmailUncached(ctx, email)
	if err != nil {
		return err
	}

	if err := s.repo.ConfirmEmail(ctx, resolved.Email); err != nil {
		return err
	}

	s.invalidate(ctx, resolved.Email)
	return nil
}

// UpdatePassword replaces the user's password hash.
func (s *UserService) UpdatePassword(ctx context.Context, user *model.User, passwordHash string) error {
	resolved, err := s.GetByEmailUncached(ctx, user.Email)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, resolved.Email, passwordHash); err != nil {
		return err
	}

	s.invalidate(ctx, resolved.Email)
	return nil
}

// UpdateAvatar sets the user's avatar URL and returns the updated user.
func (s *UserService) UpdateAvatar(ctx context.Context, email, avatarURL string) (*model.User, error) {
	resolved, err := s.GetByEmailUncached(ctx, email)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAvatar(ctx, resolved.Email, avatarURL)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, resolved.Email)
	return updated, nil
}

// invalidate deletes the cache entry for an email. Best-effort: the
// durable-store mutation has already succeeded, so a cache failure is
// logged and counted but not returned.
func (s *UserService) invalidate(ctx context.Context, email string) {
	if err := s.cache.DeleteUser(ctx, email); err != nil {
		s.metrics.IncUserCacheInvalidationError()
		s.logger.Warn("user cache invalidation failed", "email", email, "error", err)
		return
	}
	s.metrics.IncUserCacheInvalidation()
}
