package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"haircare-backend/internal/shared/storage/db"
)

type pgStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(database *sql.DB) *pgStore {
	return &pgStore{DB: database, now: time.Now}
}

func (s *pgStore) Get(ctx context.Context, userID string, policy Policy) (Usage, error) {
	var u Usage
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		u, err = s.lockAndEnsure(ctx, tx, userID, policy)
		return err
	})
	return u, err
}

// Consume locks the row so concurrent requests cannot overshoot the limit.
func (s *pgStore) Consume(ctx context.Context, userID string, policy Policy, n int) (Usage, error) {
	var u Usage
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		u, err = s.lockAndEnsure(ctx, tx, userID, policy)
		if err != nil {
			return err
		}
		if n <= 0 {
			return nil
		}
		if u.Used+n > u.Limit {
			return ErrLimitReached
		}
		u.Used += n
		_, err = tx.ExecContext(ctx, `
UPDATE usage SET used = $1 WHERE user_id = $2`, u.Used, userID)
		return err
	})
	if err != nil {
		return u, err
	}
	return u, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string, policy Policy) (Usage, error) {
	u := freshUsage(policy, s.now().UTC())
	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO usage (user_id, plan, limit_amount, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET plan = EXCLUDED.plan, limit_amount = EXCLUDED.limit_amount, used = 0, resets_at = EXCLUDED.resets_at`,
		userID, u.Plan, u.Limit, u.ResetsAt); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string, policy Policy) (Usage, error) {
	now := s.now().UTC()
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, limit_amount, used, resets_at FROM usage WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	if errors.Is(err, sql.ErrNoRows) {
		u = freshUsage(policy, now)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO usage (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
			userID, u.Plan, u.Limit, u.Used, u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}

	u, changed := roll(u, policy, now)
	if changed {
		if _, err := tx.ExecContext(ctx, `UPDATE usage SET plan = $1, limit_amount = $2, used = $3, resets_at = $4 WHERE user_id = $5`,
			u.Plan, u.Limit, u.Used, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
