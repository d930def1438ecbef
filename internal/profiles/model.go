package profiles

import (
	"time"

	"haircare-backend/internal/quiz"
)

// Profile is a user's (or guest's) profile and stored quiz answers.
type Profile struct {
	ID              string        `json:"id"`
	Email           string        `json:"email,omitempty"`
	DisplayName     string        `json:"displayName"`
	PictureURL      string        `json:"pictureUrl,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	Quiz            *quiz.Answers `json:"quiz,omitempty"`
	QuizCompletedAt *time.Time    `json:"quizCompletedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Public is the view of a profile other users may see.
type Public struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// Update is a partial profile edit. Nil fields are left unchanged.
type Update struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
}
