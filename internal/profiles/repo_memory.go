package profiles

import (
	"context"
	"sync"
	"time"

	"haircare-backend/internal/quiz"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]Profile)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.profiles[profile.ID]
	if !ok {
		profile.CreatedAt = now
		profile.UpdatedAt = now
		r.profiles[profile.ID] = profile
		return nil
	}
	existing.Email = profile.Email
	existing.PictureURL = profile.PictureURL
	if existing.DisplayName == "" {
		existing.DisplayName = profile.DisplayName
	}
	existing.UpdatedAt = now
	r.profiles[profile.ID] = existing
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID string, update Update) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
	}
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	profile.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = profile
	return profile, nil
}

func (r *MemoryRepo) SaveQuiz(ctx context.Context, userID string, answers quiz.Answers, completedAt time.Time) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	profile, ok := r.profiles[userID]
	if !ok {
		profile = Profile{ID: userID, CreatedAt: now}
	}
	profile.Quiz = &answers
	profile.QuizCompletedAt = &completedAt
	profile.UpdatedAt = now
	r.profiles[userID] = profile
	return profile, nil
}
