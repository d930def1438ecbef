package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisExpirationAddsStaleRetention(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStoreFromClient(client, "", time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if got := store.key("obf:product:123"); got != "haircare:obf:product:123" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := store.expiration(Entry{ExpiresAt: now.Add(10 * time.Minute)}); got != 70*time.Minute {
		t.Fatalf("expected 70m, got %s", got)
	}
	if got := store.expiration(Entry{ExpiresAt: now.Add(-time.Minute)}); got != time.Hour {
		t.Fatalf("expired entry should keep only retention, got %s", got)
	}
}
