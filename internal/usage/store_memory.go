package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Usage
	now  func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string]Usage),
		now:  time.Now,
	}
}

func (s *memoryStore) Get(ctx context.Context, userID string, policy Policy) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, policy), nil
}

func (s *memoryStore) ensureLocked(userID string, policy Policy) Usage {
	now := s.now().UTC()
	u, ok := s.data[userID]
	if !ok {
		u = freshUsage(policy, now)
	}
	u, _ = roll(u, policy, now)
	s.data[userID] = u
	return u
}

func (s *memoryStore) Consume(ctx context.Context, userID string, policy Policy, n int) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, policy)
	if n <= 0 {
		return u, nil
	}
	if u.Used+n > u.Limit {
		return u, ErrLimitReached
	}
	u.Used += n
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string, policy Policy) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := freshUsage(policy, s.now().UTC())
	s.data[userID] = u
	return u, nil
}
