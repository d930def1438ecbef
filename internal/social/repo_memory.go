package social

import (
	"context"
	"sort"
	"sync"
	"time"
)

type edge struct {
	follower string
	followee string
}

// MemoryRepo is an in-process Repo used in dev and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	edges map[edge]time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{edges: make(map[edge]time.Time)}
}

func (m *MemoryRepo) Add(ctx context.Context, followerID, followeeID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := edge{follower: followerID, followee: followeeID}
	if _, ok := m.edges[key]; !ok {
		m.edges[key] = at
	}
	return nil
}

func (m *MemoryRepo) Remove(ctx context.Context, followerID, followeeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.edges, edge{follower: followerID, followee: followeeID})
	return nil
}

func (m *MemoryRepo) Followers(ctx context.Context, userID string, limit, offset int) ([]Follow, error) {
	return m.collect(ctx, limit, offset, func(e edge) bool { return e.followee == userID })
}

func (m *MemoryRepo) Following(ctx context.Context, userID string, limit, offset int) ([]Follow, error) {
	return m.collect(ctx, limit, offset, func(e edge) bool { return e.follower == userID })
}

func (m *MemoryRepo) Counts(ctx context.Context, userID string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	followers, following := 0, 0
	for e := range m.edges {
		if e.followee == userID {
			followers++
		}
		if e.follower == userID {
			following++
		}
	}
	return followers, following, nil
}

func (m *MemoryRepo) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	items, err := m.collect(ctx, 0, 0, func(e edge) bool { return e.follower == userID })
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, f := range items {
		ids = append(ids, f.FolloweeID)
	}
	return ids, nil
}

// collect returns matching edges, newest first.
func (m *MemoryRepo) collect(ctx context.Context, limit, offset int, keep func(edge) bool) ([]Follow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var out []Follow
	for e, at := range m.edges {
		if keep(e) {
			out = append(out, Follow{FollowerID: e.follower, FolloweeID: e.followee, CreatedAt: at})
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if out[i].FollowerID != out[j].FollowerID {
			return out[i].FollowerID < out[j].FollowerID
		}
		return out[i].FolloweeID < out[j].FolloweeID
	})
	if offset >= len(out) {
		return []Follow{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
