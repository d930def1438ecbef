// Package cache implements a fetch-with-cache wrapper with wall-clock expiry
// and ETag revalidation over pluggable key/value stores.
package cache

import (
	"context"
	"time"
)

// Entry is a cached upstream response.
type Entry struct {
	Body      []byte    `json:"body"`
	ETag      string    `json:"etag,omitempty"`
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Fresh reports whether the entry is still within its TTL at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store is a key/value backend for entries. Get reports false for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}
