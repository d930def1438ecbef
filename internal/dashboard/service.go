// Package dashboard aggregates a signed-in user's profile, activity and
// quota into a single view.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"haircare-backend/internal/profiles"
	"haircare-backend/internal/recommendations"
	"haircare-backend/internal/regimens"
	"haircare-backend/internal/usage"
)

const topProducts = 3

const (
	BadgeQuizComplete      = "quiz-complete"
	BadgeFirstRegimen      = "first-regimen"
	BadgeProlific          = "prolific"
	BadgeCommunityFavorite = "community-favorite"
	BadgeConnector         = "connector"
	BadgeCurator           = "curator"
)

type ProfileSource interface {
	Get(ctx context.Context, userID string) (profiles.Profile, error)
}

type ActivitySource interface {
	Stats(ctx context.Context, userID string) (regimens.Stats, error)
}

type FollowSource interface {
	Counts(ctx context.Context, userID string) (followers, following int, err error)
}

type UsageSource interface {
	Get(ctx context.Context, userID string) (usage.Usage, error)
}

type RecommendationSource interface {
	Latest(ctx context.Context, userID string) (recommendations.Result, error)
}

// Counts are the community totals shown on the dashboard.
type Counts struct {
	Authored      int `json:"authored"`
	LikesReceived int `json:"likesReceived"`
	Saved         int `json:"saved"`
	Followers     int `json:"followers"`
	Following     int `json:"following"`
}

type ProfileSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

type ChatUsage struct {
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}

type LatestRecommendation struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	TopProducts []string  `json:"topProducts"`
}

// Dashboard is the body of GET /me/dashboard.
type Dashboard struct {
	Profile              ProfileSummary        `json:"profile"`
	QuizCompleted        bool                  `json:"quizCompleted"`
	Counts               Counts                `json:"counts"`
	ChatUsage            ChatUsage             `json:"chatUsage"`
	LatestRecommendation *LatestRecommendation `json:"latestRecommendation"`
	Badges               []string              `json:"badges"`
}

type Service struct {
	Profiles        ProfileSource
	Activity        ActivitySource
	Follows         FollowSource
	Usage           UsageSource
	Recommendations RecommendationSource
}

func NewService(p ProfileSource, a ActivitySource, f FollowSource, u UsageSource, r RecommendationSource) *Service {
	return &Service{Profiles: p, Activity: a, Follows: f, Usage: u, Recommendations: r}
}

// Build loads every dashboard input concurrently. A missing profile or
// recommendation run is not an error.
func (s *Service) Build(ctx context.Context, userID string) (Dashboard, error) {
	if strings.TrimSpace(userID) == "" {
		return Dashboard{}, errors.New("user is required")
	}
	var (
		profile              profiles.Profile
		stats                regimens.Stats
		followers, following int
		quota                usage.Usage
		latest               *recommendations.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Profiles.Get(gctx, userID)
		if errors.Is(err, profiles.ErrNotFound) {
			profile = profiles.Profile{ID: userID}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		st, err := s.Activity.Stats(gctx, userID)
		if err != nil {
			return fmt.Errorf("load regimen stats: %w", err)
		}
		stats = st
		return nil
	})
	g.Go(func() error {
		var err error
		followers, following, err = s.Follows.Counts(gctx, userID)
		if err != nil {
			return fmt.Errorf("load follow counts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		u, err := s.Usage.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("load chat usage: %w", err)
		}
		quota = u
		return nil
	})
	g.Go(func() error {
		r, err := s.Recommendations.Latest(gctx, userID)
		if errors.Is(err, recommendations.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load latest recommendation: %w", err)
		}
		latest = &r
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Profile: ProfileSummary{
			ID:          profile.ID,
			DisplayName: profile.DisplayName,
			PictureURL:  profile.PictureURL,
		},
		QuizCompleted: profile.Quiz != nil,
		Counts: Counts{
			Authored:      stats.Authored,
			LikesReceived: stats.LikesReceived,
			Saved:         stats.Saved,
			Followers:     followers,
			Following:     following,
		},
		ChatUsage: ChatUsage{
			Limit:     quota.Limit,
			Used:      quota.Used,
			Remaining: quota.Remaining(),
			ResetsAt:  quota.ResetsAt,
		},
	}
	if latest != nil {
		d.LatestRecommendation = summarize(*latest)
	}
	d.Badges = Badges(d.QuizCompleted, d.Counts)
	return d, nil
}

// Badges returns the earned badges in a fixed order.
func Badges(quizCompleted bool, c Counts) []string {
	badges := []string{}
	if quizCompleted {
		badges = append(badges, BadgeQuizComplete)
	}
	if c.Authored >= 1 {
		badges = append(badges, BadgeFirstRegimen)
	}
	if c.Authored >= 5 {
		badges = append(badges, BadgeProlific)
	}
	if c.LikesReceived >= 10 {
		badges = append(badges, BadgeCommunityFavorite)
	}
	if c.Followers >= 10 {
		badges = append(badges, BadgeConnector)
	}
	if c.Saved >= 10 {
		badges = append(badges, BadgeCurator)
	}
	return badges
}

func summarize(r recommendations.Result) *LatestRecommendation {
	names := []string{}
	for _, item := range r.Items {
		if len(names) == topProducts {
			break
		}
		names = append(names, item.Product.Name)
	}
	return &LatestRecommendation{ID: r.ID, CreatedAt: r.CreatedAt, TopProducts: names}
}
