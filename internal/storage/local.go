package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NoopStore is used when object storage is not configured. It discards
// the upload and returns a placeholder URL, which keeps local development
// working without an S3 bucket.
type NoopStore struct {
	logger  *slog.Logger
	entropy io.Reader
}

func NewNoopStore(logger *slog.Logger) *NoopStore {
	return &NoopStore{
		logger:  logger,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *NoopStore) SaveAvatar(ctx context.Context, data io.Reader, contentType string) (string, error) {
	n, err := io.Copy(io.Discard, data)
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}

	key := "avatars/" + ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String() + extensionFor(contentType)
	s.logger.Info("object storage not configured, discarding avatar upload",
		"key", key,
		"content_type", contentType,
		"size_bytes", n,
	)
	return "local://" + key, nil
}
