package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contactdex/contactdex/internal/model"
)

// userKeyPrefix namespaces user entries. The cache key is the user's
// email, exact and case-sensitive. Entries carry no TTL: correctness
// relies on invalidation-on-write, not expiry.
const userKeyPrefix = "user:"

// cachedUser is the wire form of a user in Redis. It carries the fields
// that json tags on model.User hide from API responses.
type cachedUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	RefreshToken *string   `json:"refresh_token"`
	Confirmed    bool      `json:"confirmed"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetUser retrieves a cached user by email.
// Returns (nil, nil) on a miss; a corrupted entry is treated as a miss.
// Infrastructure failures are returned as errors so callers can degrade
// to the durable store.
func (c *Cache) GetUser(ctx context.Context, email string) (*model.User, error) {
	data, err := c.client.Get(ctx, userKeyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Cache miss is not an error
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.User{
		ID:           cached.ID,
		Username:     cached.Username,
		Email:        cached.Email,
		Password:     cached.Password,
		RefreshToken: cached.RefreshToken,
		Confirmed:    cached.Confirmed,
		Avatar:       cached.Avatar,
		CreatedAt:    cached.CreatedAt,
	}, nil
}

// SetUser caches a user under their email. Only found users are ever
// cached; absence is never stored as a tombstone, so a registration that
// races a lookup cannot be masked by a stale not-found marker.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	cached := cachedUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Password:     user.Password,
		RefreshToken: user.RefreshToken,
		Confirmed:    user.Confirmed,
		Avatar:       user.Avatar,
		CreatedAt:    user.CreatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return c.client.Set(ctx, userKeyPrefix+user.Email, data, 0).Err()
}

// DeleteUser removes the cached entry for an email. Invalidation is
// best-effort at the call sites; the next read repopulates the cache.
func (c *Cache) DeleteUser(ctx context.Context, email string) error {
	return c.client.Del(ctx, userKeyPrefix+email).Err()
}
