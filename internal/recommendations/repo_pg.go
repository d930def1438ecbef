package recommendations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo stores every run in recommendation_runs and reads back the newest.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Save(ctx context.Context, result Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal recommendation result: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO recommendation_runs (id, user_id, result, ai_ranked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, result.ID, result.UserID, payload, result.AIRanked, result.CreatedAt)
	return err
}

func (r *PGRepo) Latest(ctx context.Context, userID string) (Result, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT result FROM recommendation_runs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("decode recommendation result: %w", err)
	}
	return result, nil
}
