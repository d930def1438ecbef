package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"haircare-backend/internal/profiles"
	"haircare-backend/internal/shared/server/middleware"
	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/telemetry"
)

// Profiles confirms follow targets exist.
type Profiles interface {
	Get(ctx context.Context, userID string) (profiles.Profile, error)
}

type Service struct {
	Repo     Repo
	Profiles Profiles
	now      func() time.Time
}

// NewService constructs a Service. profiles may be nil to skip the target check.
func NewService(repo Repo, profiles Profiles) *Service {
	return &Service{Repo: repo, Profiles: profiles, now: func() time.Time { return time.Now().UTC() }}
}

// Follow records followerID following followeeID. Repeats are no-ops.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}
	if followeeID == "" || middleware.IsGuestID(followeeID) {
		return ErrNotFound
	}
	if s.Profiles != nil {
		if _, err := s.Profiles.Get(ctx, followeeID); err != nil {
			if errors.Is(err, profiles.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
	}
	if err := s.Repo.Add(ctx, followerID, followeeID, s.now()); err != nil {
		return err
	}
	telemetry.Info("social.followed", map[string]any{"user_id": followerID, "followee_id": followeeID})
	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.Repo.Remove(ctx, followerID, followeeID)
}

func (s *Service) Followers(ctx context.Context, userID string, limit, offset int) ([]Follow, error) {
	window := paging.Clamp(limit, offset)
	return s.Repo.Followers(ctx, userID, window.Limit, window.Offset)
}

func (s *Service) Following(ctx context.Context, userID string, limit, offset int) ([]Follow, error) {
	window := paging.Clamp(limit, offset)
	return s.Repo.Following(ctx, userID, window.Limit, window.Offset)
}

func (s *Service) Counts(ctx context.Context, userID string) (int, int, error) {
	return s.Repo.Counts(ctx, userID)
}

func (s *Service) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.Repo.FollowingIDs(ctx, userID)
}
