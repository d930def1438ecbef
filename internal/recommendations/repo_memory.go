package recommendations

import (
	"context"
	"sync"
)

// MemoryRepo keeps the latest run per user.
type MemoryRepo struct {
	mu     sync.RWMutex
	latest map[string]Result
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{latest: make(map[string]Result)}
}

func (r *MemoryRepo) Save(ctx context.Context, result Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.latest[result.UserID]; ok && prev.CreatedAt.After(result.CreatedAt) {
		return nil
	}
	r.latest[result.UserID] = result
	return nil
}

func (r *MemoryRepo) Latest(ctx context.Context, userID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.latest[userID]
	if !ok {
		return Result{}, ErrNotFound
	}
	return result, nil
}
