// Package social tracks who follows whom.
package social

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid follow")
	ErrNotFound     = errors.New("user not found")
)

// Follow is a directed follower -> followee edge.
type Follow struct {
	FollowerID string    `json:"followerId"`
	FolloweeID string    `json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}
