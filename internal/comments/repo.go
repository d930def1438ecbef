package comments

import (
	"context"
	"time"
)

// Repo persists comments. GetByID excludes deleted comments; List also
// excludes hidden ones.
type Repo interface {
	Create(ctx context.Context, c Comment) error
	GetByID(ctx context.Context, id string) (Comment, error)
	List(ctx context.Context, regimenID string, limit, offset int) ([]Comment, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	SetStatus(ctx context.Context, id, status string) error
}
