package regimens

import (
	"context"
	"sort"
	"sync"
	"time"

	"haircare-backend/internal/shared/util"
)

type relationKey struct {
	regimenID string
	userID    string
}

// MemoryRepo is an in-process Repo used in dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	regimens map[string]Regimen
	likes    map[relationKey]time.Time
	saves    map[relationKey]time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		regimens: make(map[string]Regimen),
		likes:    make(map[relationKey]time.Time),
		saves:    make(map[relationKey]time.Time),
	}
}

func (m *MemoryRepo) Create(ctx context.Context, r Regimen) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regimens[r.ID] = r
	return nil
}

func (m *MemoryRepo) GetByID(ctx context.Context, id string) (Regimen, error) {
	if err := ctx.Err(); err != nil {
		return Regimen{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regimens[id]
	if !ok || r.DeletedAt != nil {
		return Regimen{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepo) Update(ctx context.Context, r Regimen) error {
	return m.mutate(ctx, r.ID, func(existing *Regimen) {
		existing.Title = r.Title
		existing.Description = r.Description
		existing.Steps = r.Steps
		existing.Tags = r.Tags
		existing.HairType = r.HairType
		existing.PhotoKey = r.PhotoKey
		existing.Visibility = r.Visibility
		existing.UpdatedAt = r.UpdatedAt
	})
}

func (m *MemoryRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return m.mutate(ctx, id, func(existing *Regimen) {
		existing.DeletedAt = &at
		existing.UpdatedAt = at
	})
}

func (m *MemoryRepo) SetStatus(ctx context.Context, id, status string) error {
	return m.mutate(ctx, id, func(existing *Regimen) {
		existing.Status = status
	})
}

func (m *MemoryRepo) AdjustComments(ctx context.Context, regimenID string, delta int) error {
	return m.mutate(ctx, regimenID, func(existing *Regimen) {
		existing.CommentsCount = clampCount(existing.CommentsCount + delta)
	})
}

func (m *MemoryRepo) mutate(ctx context.Context, id string, fn func(*Regimen)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regimens[id]
	if !ok || r.DeletedAt != nil {
		return ErrNotFound
	}
	fn(&r)
	m.regimens[id] = r
	return nil
}

func (m *MemoryRepo) List(ctx context.Context, filter Filter) ([]Regimen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var out []Regimen
	for _, r := range m.regimens {
		if r.Listed() && matches(r, filter) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sortRegimens(out, filter.Sort)
	return page(out, filter.Offset, filter.Limit), nil
}

func (m *MemoryRepo) SetLiked(ctx context.Context, regimenID, userID string, liked bool) (bool, error) {
	return m.toggle(ctx, m.likes, regimenID, userID, liked, func(r *Regimen, delta int) {
		r.LikesCount = clampCount(r.LikesCount + delta)
	})
}

func (m *MemoryRepo) SetSaved(ctx context.Context, regimenID, userID string, saved bool) (bool, error) {
	return m.toggle(ctx, m.saves, regimenID, userID, saved, func(r *Regimen, delta int) {
		r.SavesCount = clampCount(r.SavesCount + delta)
	})
}

func (m *MemoryRepo) toggle(ctx context.Context, rel map[relationKey]time.Time, regimenID, userID string, on bool, adjust func(*Regimen, int)) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regimens[regimenID]
	if !ok || r.DeletedAt != nil {
		return false, ErrNotFound
	}
	key := relationKey{regimenID: regimenID, userID: userID}
	_, exists := rel[key]
	switch {
	case on && !exists:
		rel[key] = time.Now().UTC()
		adjust(&r, 1)
	case !on && exists:
		delete(rel, key)
		adjust(&r, -1)
	default:
		return false, nil
	}
	m.regimens[regimenID] = r
	return true, nil
}

func (m *MemoryRepo) ViewerState(ctx context.Context, regimenID, userID string) (bool, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := relationKey{regimenID: regimenID, userID: userID}
	_, liked := m.likes[key]
	_, saved := m.saves[key]
	return liked, saved, nil
}

func (m *MemoryRepo) ListSaved(ctx context.Context, userID string, limit, offset int) ([]Regimen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type savedAt struct {
		r  Regimen
		at time.Time
	}
	m.mu.RLock()
	var items []savedAt
	for key, at := range m.saves {
		if key.userID != userID {
			continue
		}
		r, ok := m.regimens[key.regimenID]
		if !ok || !r.VisibleTo(userID) {
			continue
		}
		r.Saved = true
		items = append(items, savedAt{r: r, at: at})
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].at.Equal(items[j].at) {
			return items[i].at.After(items[j].at)
		}
		return items[i].r.ID < items[j].r.ID
	})
	out := make([]Regimen, 0, len(items))
	for _, it := range items {
		out = append(out, it.r)
	}
	return page(out, offset, limit), nil
}

func (m *MemoryRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s Stats
	for _, r := range m.regimens {
		if r.AuthorID == userID && r.DeletedAt == nil {
			s.Authored++
			s.LikesReceived += r.LikesCount
		}
	}
	for key := range m.saves {
		if key.userID != userID {
			continue
		}
		if r, ok := m.regimens[key.regimenID]; ok && r.DeletedAt == nil {
			s.Saved++
		}
	}
	return s, nil
}

func matches(r Regimen, f Filter) bool {
	if f.Tag != "" && !util.Contains(r.Tags, f.Tag) {
		return false
	}
	if f.HairType != "" && r.HairType != f.HairType {
		return false
	}
	if f.AuthorID != "" && r.AuthorID != f.AuthorID {
		return false
	}
	if f.AuthorIDs != nil && !util.Contains(f.AuthorIDs, r.AuthorID) {
		return false
	}
	return true
}

func sortRegimens(items []Regimen, by string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if by == SortPopular {
			if a.LikesCount != b.LikesCount {
				return a.LikesCount > b.LikesCount
			}
			if a.SavesCount != b.SavesCount {
				return a.SavesCount > b.SavesCount
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func page(items []Regimen, offset, limit int) []Regimen {
	if offset >= len(items) {
		return []Regimen{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
