package profiles

import (
	"context"
	"errors"
	"time"

	"haircare-backend/internal/quiz"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "profile not found" }

var ErrInvalidInput = errors.New("invalid profile")

type Repo interface {
	// Upsert stores identity fields from login. A display name the user
	// already edited is kept.
	Upsert(ctx context.Context, profile Profile) error
	GetByID(ctx context.Context, userID string) (Profile, error)
	Update(ctx context.Context, userID string, update Update) (Profile, error)
	// SaveQuiz creates the profile row when it does not exist yet.
	SaveQuiz(ctx context.Context, userID string, answers quiz.Answers, completedAt time.Time) (Profile, error)
}
