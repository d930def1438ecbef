package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"haircare-backend/internal/quiz"
)

const (
	maxDisplayName = 60
	maxBio         = 280
)

type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// UpsertFromAuth persists the identity from OAuth so community records and
// quotas have a stable owner.
func (s *Service) UpsertFromAuth(ctx context.Context, profile Profile) error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	if strings.TrimSpace(profile.ID) == "" || strings.TrimSpace(profile.Email) == "" {
		return errors.New("profile id and email are required")
	}
	profile.DisplayName = truncateRunes(strings.TrimSpace(profile.DisplayName), maxDisplayName)
	return s.Repo.Upsert(ctx, profile)
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial edit after validating lengths.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update Update) (Profile, error) {
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return Profile{}, fmt.Errorf("%w: displayName must not be empty", ErrInvalidInput)
		}
		if utf8.RuneCountInString(name) > maxDisplayName {
			return Profile{}, fmt.Errorf("%w: displayName must be at most %d characters", ErrInvalidInput, maxDisplayName)
		}
		update.DisplayName = &name
	}
	if update.Bio != nil {
		bio := strings.TrimSpace(*update.Bio)
		if utf8.RuneCountInString(bio) > maxBio {
			return Profile{}, fmt.Errorf("%w: bio must be at most %d characters", ErrInvalidInput, maxBio)
		}
		update.Bio = &bio
	}
	if update.DisplayName == nil && update.Bio == nil {
		return s.Get(ctx, userID)
	}
	return s.Repo.Update(ctx, userID, update)
}

// SaveQuiz normalizes, validates and stores answers. Guests store under their
// guest identity.
func (s *Service) SaveQuiz(ctx context.Context, userID string, answers quiz.Answers) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	answers = answers.Normalize()
	if err := answers.Validate(); err != nil {
		return Profile{}, err
	}
	return s.Repo.SaveQuiz(ctx, userID, answers, s.now().UTC())
}

// Quiz returns the stored answers, nil when the user has none.
func (s *Service) Quiz(ctx context.Context, userID string) (*quiz.Answers, error) {
	profile, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile.Quiz, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
