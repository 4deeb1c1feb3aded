package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Entry is a cached upstream body and the moment it was fetched. Freshness is
// judged by the reader; the cache only enforces retention.
type Entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"stored_at"`
}

func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

type Cache interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, entry Entry, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
