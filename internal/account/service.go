// Package account moves a guest's data to the account they signed in with.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"haircare-backend/internal/profiles"
	"haircare-backend/internal/quiz"
	"haircare-backend/internal/recommendations"
	"haircare-backend/internal/shared/telemetry"
)

// QuizStore reads and writes stored quiz answers.
type QuizStore interface {
	Quiz(ctx context.Context, userID string) (*quiz.Answers, error)
	SaveQuiz(ctx context.Context, userID string, answers quiz.Answers) (profiles.Profile, error)
}

type Service struct {
	Quizzes QuizStore
	Runs    recommendations.Repo
	now     func() time.Time
}

type ClaimResult struct {
	QuizClaimed           bool `json:"quizClaimed"`
	RecommendationClaimed bool `json:"recommendationClaimed"`
}

func NewService(quizzes QuizStore, runs recommendations.Repo) *Service {
	return &Service{Quizzes: quizzes, Runs: runs, now: time.Now}
}

// ClaimGuest copies the guest's quiz answers and latest recommendation run
// to the signed-in user. Data the user already has is never overwritten.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	var result ClaimResult

	claimed, err := s.claimQuiz(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	result.QuizClaimed = claimed

	claimed, err = s.claimRun(ctx, guestUserID, authedUserID)
	if err != nil {
		return result, err
	}
	result.RecommendationClaimed = claimed

	telemetry.Info("account.guest_claimed", map[string]any{
		"user_id":                authedUserID,
		"guest_id":               guestUserID,
		"quiz_claimed":           result.QuizClaimed,
		"recommendation_claimed": result.RecommendationClaimed,
	})
	return result, nil
}

func (s *Service) claimQuiz(ctx context.Context, guestUserID, authedUserID string) (bool, error) {
	if s.Quizzes == nil {
		return false, nil
	}
	guest, err := s.Quizzes.Quiz(ctx, guestUserID)
	if err != nil {
		return false, fmt.Errorf("load guest quiz: %w", err)
	}
	if guest == nil {
		return false, nil
	}
	existing, err := s.Quizzes.Quiz(ctx, authedUserID)
	if err != nil {
		return false, fmt.Errorf("load user quiz: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.Quizzes.SaveQuiz(ctx, authedUserID, *guest); err != nil {
		return false, fmt.Errorf("save claimed quiz: %w", err)
	}
	return true, nil
}

func (s *Service) claimRun(ctx context.Context, guestUserID, authedUserID string) (bool, error) {
	if s.Runs == nil {
		return false, nil
	}
	run, err := s.Runs.Latest(ctx, guestUserID)
	if errors.Is(err, recommendations.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load guest recommendations: %w", err)
	}
	_, err = s.Runs.Latest(ctx, authedUserID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, recommendations.ErrNotFound) {
		return false, fmt.Errorf("load user recommendations: %w", err)
	}
	run.ID = uuid.NewString()
	run.UserID = authedUserID
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	if err := s.Runs.Save(ctx, run); err != nil {
		return false, fmt.Errorf("save claimed recommendations: %w", err)
	}
	return true, nil
}
