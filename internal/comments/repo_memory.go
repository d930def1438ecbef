package comments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-process Repo used in dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	comments map[string]Comment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{comments: make(map[string]Comment)}
}

func (m *MemoryRepo) Create(ctx context.Context, c Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = c
	return nil
}

func (m *MemoryRepo) GetByID(ctx context.Context, id string) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok || c.DeletedAt != nil {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryRepo) List(ctx context.Context, regimenID string, limit, offset int) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var out []Comment
	for _, c := range m.comments {
		if c.RegimenID == regimenID && c.DeletedAt == nil && c.Status == StatusActive {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return []Comment{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return m.mutate(ctx, id, func(c *Comment) { c.DeletedAt = &at })
}

func (m *MemoryRepo) SetStatus(ctx context.Context, id, status string) error {
	return m.mutate(ctx, id, func(c *Comment) { c.Status = status })
}

func (m *MemoryRepo) mutate(ctx context.Context, id string, fn func(*Comment)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.DeletedAt != nil {
		return ErrNotFound
	}
	fn(&c)
	m.comments[id] = c
	return nil
}
