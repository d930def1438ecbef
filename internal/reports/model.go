// Package reports accepts user reports on community content and hides
// targets once enough distinct users have reported them.
package reports

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput   = errors.New("invalid report")
	ErrTargetNotFound = errors.New("report target not found")
)

const (
	TargetRegimen = "regimen"
	TargetComment = "comment"

	DefaultHideThreshold = 3
	maxDetails           = 500
)

// Reasons enumerates accepted report reasons.
var Reasons = []string{"spam", "inappropriate", "misinformation", "harassment", "other"}

// Report is one user's complaint about a regimen or comment.
type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporterId"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Reason     string    `json:"reason"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Input is the body of POST /reports.
type Input struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Reason     string `json:"reason"`
	Details    string `json:"details"`
}
