package social

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (p *PGRepo) Add(ctx context.Context, followerID, followeeID string, at time.Time) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID, at)
	return err
}

func (p *PGRepo) Remove(ctx context.Context, followerID, followeeID string) error {
	_, err := p.DB.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2
	`, followerID, followeeID)
	return err
}

func (p *PGRepo) Followers(ctx context.Context, userID string, limit, offset int) ([]Follow, error) {
	return p.query(ctx, `
		SELECT follower_id, followee_id, created_at
		FROM follows
		WHERE followee_id = $1
		ORDER BY created_at DESC, follower_id ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

func (p *PGRepo) Following(ctx context.Context, userID string, limit, offset int) ([]Follow, error) {
	return p.query(ctx, `
		SELECT follower_id, followee_id, created_at
		FROM follows
		WHERE follower_id = $1
		ORDER BY created_at DESC, followee_id ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

func (p *PGRepo) Counts(ctx context.Context, userID string) (int, int, error) {
	var followers, following int
	err := p.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, userID).Scan(&followers, &following)
	return followers, following, err
}

func (p *PGRepo) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *PGRepo) query(ctx context.Context, query string, args ...any) ([]Follow, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Follow{}
	for rows.Next() {
		var f Follow
		if err := rows.Scan(&f.FollowerID, &f.FolloweeID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
