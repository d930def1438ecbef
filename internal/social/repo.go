package social

import (
	"context"
	"time"
)

// Repo persists follow edges. Add and Remove are idempotent.
type Repo interface {
	Add(ctx context.Context, followerID, followeeID string, at time.Time) error
	Remove(ctx context.Context, followerID, followeeID string) error
	Followers(ctx context.Context, userID string, limit, offset int) ([]Follow, error)
	Following(ctx context.Context, userID string, limit, offset int) ([]Follow, error)
	Counts(ctx context.Context, userID string) (followers, following int, err error)
	// FollowingIDs returns every followee of userID.
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}
