// Package comments stores discussion threads on community regimens.
package comments

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("comment not found")
	ErrInvalidInput = errors.New("invalid comment")
	ErrForbidden    = errors.New("not allowed to delete comment")
)

const (
	StatusActive = "active"
	StatusHidden = "hidden"

	maxContent = 1000
)

// Comment is a remark on a regimen.
type Comment struct {
	ID        string     `json:"id"`
	RegimenID string     `json:"regimenId"`
	AuthorID  string     `json:"authorId"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"-"`
}
