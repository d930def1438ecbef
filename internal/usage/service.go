package usage

import (
	"context"
	"database/sql"
)

type store interface {
	Get(ctx context.Context, userID string, policy Policy) (Usage, error)
	Consume(ctx context.Context, userID string, policy Policy, n int) (Usage, error)
	Reset(ctx context.Context, userID string, policy Policy) (Usage, error)
}

// Service manages quota windows via an underlying store.
type Service struct {
	store store
	plans Plans
}

// NewService constructs a Service with an in-memory store.
func NewService(plans Plans) *Service {
	return &Service{store: newMemoryStore(), plans: plans}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(db *sql.DB, plans Plans) *Service {
	return &Service{store: NewPGStore(db), plans: plans}
}

// Get returns the current window, starting a new one if the old one expired.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.Get(ctx, userID, s.plans.For(userID))
}

// CanConsume reports whether n more units fit in the current window.
func (s *Service) CanConsume(ctx context.Context, userID string, n int) (bool, Usage, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	if n <= 0 {
		return true, u, nil
	}
	return u.Used+n <= u.Limit, u, nil
}

// Consume increments usage by n, failing with ErrLimitReached when it would
// exceed the limit.
func (s *Service) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Consume(ctx, userID, s.plans.For(userID), n)
}

// Reset sets usage to zero and starts a new window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID, s.plans.For(userID))
}
