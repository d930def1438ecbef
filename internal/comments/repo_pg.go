package comments

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (p *PGRepo) Create(ctx context.Context, c Comment) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO comments (id, regimen_id, author_id, content, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.RegimenID, c.AuthorID, c.Content, c.Status, c.CreatedAt)
	return err
}

func (p *PGRepo) GetByID(ctx context.Context, id string) (Comment, error) {
	var c Comment
	err := p.DB.QueryRowContext(ctx, `
		SELECT id, regimen_id, author_id, content, status, created_at
		FROM comments
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&c.ID, &c.RegimenID, &c.AuthorID, &c.Content, &c.Status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (p *PGRepo) List(ctx context.Context, regimenID string, limit, offset int) ([]Comment, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, regimen_id, author_id, content, status, created_at
		FROM comments
		WHERE regimen_id = $1 AND deleted_at IS NULL AND status = 'active'
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, regimenID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.RegimenID, &c.AuthorID, &c.Content, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *PGRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE comments SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
	`, id, at)
	return requireRow(res, err)
}

func (p *PGRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE comments SET status = $2 WHERE id = $1 AND deleted_at IS NULL
	`, id, status)
	return requireRow(res, err)
}

func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
