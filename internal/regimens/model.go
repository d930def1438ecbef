// Package regimens is the community hub: user-authored hair-care routines
// with likes, saves and photos.
package regimens

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("regimen not found")
	ErrInvalidInput  = errors.New("invalid regimen")
	ErrForbidden     = errors.New("not the regimen author")
	ErrPhotoTooLarge = errors.New("photo too large")
	ErrNotAnImage    = errors.New("photo must be an image")
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"

	StatusActive = "active"
	StatusHidden = "hidden"

	SortRecent  = "recent"
	SortPopular = "popular"
)

// Step is one ordered instruction in a regimen.
type Step struct {
	Order     int    `json:"order"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	ProductID string `json:"productId,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// Regimen is a community-shared routine.
type Regimen struct {
	ID            string     `json:"id"`
	AuthorID      string     `json:"authorId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Steps         []Step     `json:"steps"`
	Tags          []string   `json:"tags"`
	HairType      string     `json:"hairType,omitempty"`
	PhotoKey      string     `json:"photoKey,omitempty"`
	Visibility    string     `json:"visibility"`
	Status        string     `json:"status"`
	LikesCount    int        `json:"likesCount"`
	SavesCount    int        `json:"savesCount"`
	CommentsCount int        `json:"commentsCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"-"`

	// Viewer state, filled on single reads.
	Liked bool `json:"liked"`
	Saved bool `json:"saved"`
}

// VisibleTo reports whether viewerID may read the regimen.
func (r Regimen) VisibleTo(viewerID string) bool {
	if r.DeletedAt != nil {
		return false
	}
	if r.AuthorID == viewerID && viewerID != "" {
		return true
	}
	return r.Visibility == VisibilityPublic && r.Status == StatusActive
}

// Listed reports whether the regimen appears in public listings.
func (r Regimen) Listed() bool {
	return r.DeletedAt == nil && r.Visibility == VisibilityPublic && r.Status == StatusActive
}

// CreateInput is the body of POST /regimens.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []Step   `json:"steps"`
	Tags        []string `json:"tags"`
	HairType    string   `json:"hairType"`
	Visibility  string   `json:"visibility"`
}

// UpdateInput is a partial edit; nil fields are unchanged.
type UpdateInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Steps       *[]Step   `json:"steps"`
	Tags        *[]string `json:"tags"`
	HairType    *string   `json:"hairType"`
	Visibility  *string   `json:"visibility"`
}

// Filter narrows public listings.
type Filter struct {
	Tag       string
	HairType  string
	AuthorID  string
	AuthorIDs []string
	Sort      string
	Limit     int
	Offset    int
}

// Stats summarizes a user's community activity.
type Stats struct {
	Authored      int `json:"authored"`
	LikesReceived int `json:"likesReceived"`
	Saved         int `json:"saved"`
}
