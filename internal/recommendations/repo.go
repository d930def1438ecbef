package recommendations

import "context"

// Repo persists recommendation runs.
type Repo interface {
	Save(ctx context.Context, result Result) error
	Latest(ctx context.Context, userID string) (Result, error)
}
