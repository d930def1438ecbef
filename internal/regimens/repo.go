package regimens

import (
	"context"
	"time"
)

// Repo persists regimens and their like/save relations. Reads exclude
// soft-deleted rows.
type Repo interface {
	Create(ctx context.Context, r Regimen) error
	GetByID(ctx context.Context, id string) (Regimen, error)
	Update(ctx context.Context, r Regimen) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	SetStatus(ctx context.Context, id, status string) error
	// List returns public, active regimens only.
	List(ctx context.Context, filter Filter) ([]Regimen, error)

	// SetLiked and SetSaved insert or delete the relation row and adjust the
	// counter in one transaction. changed is false when nothing was toggled.
	SetLiked(ctx context.Context, regimenID, userID string, liked bool) (changed bool, err error)
	SetSaved(ctx context.Context, regimenID, userID string, saved bool) (changed bool, err error)
	ViewerState(ctx context.Context, regimenID, userID string) (liked, saved bool, err error)
	ListSaved(ctx context.Context, userID string, limit, offset int) ([]Regimen, error)

	// AdjustComments changes comments_count by delta, never below zero.
	AdjustComments(ctx context.Context, regimenID string, delta int) error
	Stats(ctx context.Context, userID string) (Stats, error)
}
