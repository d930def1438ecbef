package cache

import (
	"context"
	"errors"
	"time"

	"haircare-backend/internal/shared/metrics"
	"haircare-backend/internal/shared/telemetry"
)

// Outcome describes how a Fetch was satisfied.
type Outcome string

const (
	OutcomeHit         Outcome = "hit"
	OutcomeRevalidated Outcome = "revalidated"
	OutcomeMiss        Outcome = "miss"
	OutcomeStale       Outcome = "stale"
)

// FetchResult is what an upstream loader returns.
// NotModified means the stored ETag is still current and Body is ignored.
type FetchResult struct {
	Body        []byte
	ETag        string
	NotModified bool
}

// LoadFunc fetches from upstream, sending etag for conditional requests when non-empty.
type LoadFunc func(ctx context.Context, etag string) (FetchResult, error)

// Fetcher wraps a Store with TTL checks and ETag revalidation.
type Fetcher struct {
	store Store
	now   func() time.Time
}

// NewFetcher constructs a Fetcher over store.
func NewFetcher(store Store) *Fetcher {
	return &Fetcher{store: store, now: time.Now}
}

// Fetch returns the cached body for key, loading from upstream when the entry
// is missing or older than ttl.
func (f *Fetcher) Fetch(ctx context.Context, key string, ttl time.Duration, load LoadFunc) ([]byte, Outcome, error) {
	if load == nil {
		return nil, "", errors.New("cache load func is required")
	}

	stored, found, err := f.store.Get(ctx, key)
	if err != nil {
		telemetry.Warn("cache.get_failed", map[string]any{"key": key, "error": err})
		found = false
	}

	now := f.now()
	if found && stored.Fresh(now) {
		metrics.IncCacheHit()
		return stored.Body, OutcomeHit, nil
	}

	etag := ""
	if found {
		etag = stored.ETag
	}
	res, loadErr := load(ctx, etag)
	if loadErr != nil {
		if found {
			telemetry.Warn("cache.serve_stale", map[string]any{"key": key, "error": loadErr})
			metrics.IncCacheHit()
			return stored.Body, OutcomeStale, nil
		}
		return nil, "", loadErr
	}

	now = f.now()
	if res.NotModified && found {
		if res.ETag != "" {
			stored.ETag = res.ETag
		}
		stored.ExpiresAt = now.Add(ttl)
		f.save(ctx, key, stored)
		metrics.IncCacheHit()
		return stored.Body, OutcomeRevalidated, nil
	}

	entry := Entry{
		Body:      res.Body,
		ETag:      res.ETag,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	f.save(ctx, key, entry)
	metrics.IncCacheMiss()
	return entry.Body, OutcomeMiss, nil
}

// Invalidate drops key from the store.
func (f *Fetcher) Invalidate(ctx context.Context, key string) error {
	return f.store.Delete(ctx, key)
}

func (f *Fetcher) save(ctx context.Context, key string, entry Entry) {
	if err := f.store.Set(ctx, key, entry); err != nil {
		telemetry.Warn("cache.set_failed", map[string]any{"key": key, "error": err})
	}
}
