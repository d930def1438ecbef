package reports

import "context"

// Repo persists reports, one per reporter per target.
type Repo interface {
	// Create stores r unless the reporter already reported the target, in
	// which case the existing report is returned with created=false.
	Create(ctx context.Context, r Report) (stored Report, created bool, err error)
	CountForTarget(ctx context.Context, targetType, targetID string) (int, error)
}
