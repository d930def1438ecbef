package reports

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. The unique index on
// (reporter_id, target_type, target_id) enforces one report per target.
type PGRepo struct {
	DB *sql.DB
}

func (p *PGRepo) Create(ctx context.Context, r Report) (Report, bool, error) {
	var id string
	err := p.DB.QueryRowContext(ctx, `
		INSERT INTO reports (id, reporter_id, target_type, target_id, reason, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (reporter_id, target_type, target_id) DO NOTHING
		RETURNING id
	`, r.ID, r.ReporterID, r.TargetType, r.TargetID, r.Reason, nullableString(r.Details), r.CreatedAt).Scan(&id)
	if err == nil {
		return r, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Report{}, false, err
	}

	var (
		existing Report
		details  sql.NullString
	)
	err = p.DB.QueryRowContext(ctx, `
		SELECT id, reporter_id, target_type, target_id, reason, details, created_at
		FROM reports
		WHERE reporter_id = $1 AND target_type = $2 AND target_id = $3
	`, r.ReporterID, r.TargetType, r.TargetID).Scan(
		&existing.ID, &existing.ReporterID, &existing.TargetType, &existing.TargetID,
		&existing.Reason, &details, &existing.CreatedAt,
	)
	if err != nil {
		return Report{}, false, err
	}
	existing.Details = details.String
	return existing, false, nil
}

func (p *PGRepo) CountForTarget(ctx context.Context, targetType, targetID string) (int, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT reporter_id) FROM reports WHERE target_type = $1 AND target_id = $2
	`, targetType, targetID).Scan(&n)
	return n, err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
