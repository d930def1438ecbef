package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"haircare-backend/internal/quiz"
)

type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `id, email, display_name, picture_url, bio, quiz, quiz_completed_at, created_at, updated_at`

func (r *PGRepo) Upsert(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO profiles (id, email, display_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  display_name = COALESCE(NULLIF(profiles.display_name, ''), EXCLUDED.display_name),
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		profile.ID,
		nullableString(profile.Email),
		nullableString(profile.DisplayName),
		nullableString(profile.PictureURL),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	query := `
SELECT ` + profileColumns + `
FROM profiles
WHERE id = $1
LIMIT 1`
	return scanProfile(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) Update(ctx context.Context, userID string, update Update) (Profile, error) {
	query := `
UPDATE profiles SET
  display_name = COALESCE($2, display_name),
  bio = COALESCE($3, bio),
  updated_at = now()
WHERE id = $1
RETURNING ` + profileColumns
	return scanProfile(r.DB.QueryRowContext(ctx, query, userID, optionalString(update.DisplayName), optionalString(update.Bio)))
}

func (r *PGRepo) SaveQuiz(ctx context.Context, userID string, answers quiz.Answers, completedAt time.Time) (Profile, error) {
	payload, err := json.Marshal(answers)
	if err != nil {
		return Profile{}, fmt.Errorf("marshal quiz: %w", err)
	}
	query := `
INSERT INTO profiles (id, quiz, quiz_completed_at, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
  quiz = EXCLUDED.quiz,
  quiz_completed_at = EXCLUDED.quiz_completed_at,
  updated_at = now()
RETURNING ` + profileColumns
	return scanProfile(r.DB.QueryRowContext(ctx, query, userID, payload, completedAt))
}

func scanProfile(row *sql.Row) (Profile, error) {
	var (
		profile     Profile
		email       sql.NullString
		displayName sql.NullString
		pictureURL  sql.NullString
		bio         sql.NullString
		quizRaw     []byte
		completedAt sql.NullTime
	)
	err := row.Scan(
		&profile.ID,
		&email,
		&displayName,
		&pictureURL,
		&bio,
		&quizRaw,
		&completedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	profile.Email = email.String
	profile.DisplayName = displayName.String
	profile.PictureURL = pictureURL.String
	profile.Bio = bio.String
	if len(quizRaw) > 0 {
		var answers quiz.Answers
		if err := json.Unmarshal(quizRaw, &answers); err != nil {
			return Profile{}, fmt.Errorf("decode quiz: %w", err)
		}
		profile.Quiz = &answers
	}
	if completedAt.Valid {
		t := completedAt.Time
		profile.QuizCompletedAt = &t
	}
	return profile, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func optionalString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
