package regimens

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"haircare-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres. Steps and tags are JSONB.
type PGRepo struct {
	DB *sql.DB
}

const regimenColumns = `id, author_id, title, description, steps, tags, hair_type, photo_key, visibility, status,
	likes_count, saves_count, comments_count, created_at, updated_at, deleted_at`

type relation struct {
	table   string
	counter string
}

var (
	likesRelation = relation{table: "regimen_likes", counter: "likes_count"}
	savesRelation = relation{table: "regimen_saves", counter: "saves_count"}
)

func (p *PGRepo) Create(ctx context.Context, r Regimen) error {
	steps, tags, err := marshalLists(r)
	if err != nil {
		return err
	}
	_, err = p.DB.ExecContext(ctx, `
		INSERT INTO regimens (id, author_id, title, description, steps, tags, hair_type, photo_key, visibility, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.AuthorID, r.Title, nullableString(r.Description), steps, tags, nullableString(r.HairType),
		nullableString(r.PhotoKey), r.Visibility, r.Status, r.CreatedAt, r.UpdatedAt)
	return err
}

func (p *PGRepo) GetByID(ctx context.Context, id string) (Regimen, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+regimenColumns+" FROM regimens WHERE id = $1 AND deleted_at IS NULL", id)
	r, err := scanRegimen(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Regimen{}, ErrNotFound
	}
	return r, err
}

func (p *PGRepo) Update(ctx context.Context, r Regimen) error {
	steps, tags, err := marshalLists(r)
	if err != nil {
		return err
	}
	res, err := p.DB.ExecContext(ctx, `
		UPDATE regimens SET title = $2, description = $3, steps = $4, tags = $5, hair_type = $6,
			photo_key = $7, visibility = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`, r.ID, r.Title, nullableString(r.Description), steps, tags, nullableString(r.HairType),
		nullableString(r.PhotoKey), r.Visibility, r.UpdatedAt)
	return requireRow(res, err)
}

func (p *PGRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE regimens SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL
	`, id, at)
	return requireRow(res, err)
}

func (p *PGRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE regimens SET status = $2 WHERE id = $1 AND deleted_at IS NULL
	`, id, status)
	return requireRow(res, err)
}

func (p *PGRepo) AdjustComments(ctx context.Context, regimenID string, delta int) error {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE regimens SET comments_count = GREATEST(comments_count + $2, 0) WHERE id = $1
	`, regimenID, delta)
	return requireRow(res, err)
}

func (p *PGRepo) List(ctx context.Context, filter Filter) ([]Regimen, error) {
	where := []string{"deleted_at IS NULL", "status = 'active'", "visibility = 'public'"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Tag != "" {
		where = append(where, "tags @> jsonb_build_array("+arg(strings.ToLower(filter.Tag))+"::text)")
	}
	if filter.HairType != "" {
		where = append(where, "hair_type = "+arg(filter.HairType))
	}
	if filter.AuthorID != "" {
		where = append(where, "author_id = "+arg(filter.AuthorID))
	}
	if filter.AuthorIDs != nil {
		ids, err := json.Marshal(filter.AuthorIDs)
		if err != nil {
			return nil, err
		}
		where = append(where, "author_id IN (SELECT jsonb_array_elements_text("+arg(ids)+"::jsonb))")
	}

	query := "SELECT " + regimenColumns + " FROM regimens WHERE " + strings.Join(where, " AND ")
	if filter.Sort == SortPopular {
		query += " ORDER BY likes_count DESC, saves_count DESC, created_at DESC, id ASC"
	} else {
		query += " ORDER BY created_at DESC, id ASC"
	}
	query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (p *PGRepo) SetLiked(ctx context.Context, regimenID, userID string, liked bool) (bool, error) {
	return p.toggle(ctx, likesRelation, regimenID, userID, liked)
}

func (p *PGRepo) SetSaved(ctx context.Context, regimenID, userID string, saved bool) (bool, error) {
	return p.toggle(ctx, savesRelation, regimenID, userID, saved)
}

// toggle writes the relation row and the counter in one transaction. The
// relation's primary key makes repeats a no-op.
func (p *PGRepo) toggle(ctx context.Context, rel relation, regimenID, userID string, on bool) (bool, error) {
	changed := false
	err := db.WithTx(ctx, p.DB, func(tx *sql.Tx) error {
		var (
			res    sql.Result
			err    error
			update string
		)
		if on {
			res, err = tx.ExecContext(ctx, "INSERT INTO "+rel.table+" (regimen_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", regimenID, userID)
			update = "UPDATE regimens SET " + rel.counter + " = " + rel.counter + " + 1 WHERE id = $1"
		} else {
			res, err = tx.ExecContext(ctx, "DELETE FROM "+rel.table+" WHERE regimen_id = $1 AND user_id = $2", regimenID, userID)
			update = "UPDATE regimens SET " + rel.counter + " = GREATEST(" + rel.counter + " - 1, 0) WHERE id = $1"
		}
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		if _, err := tx.ExecContext(ctx, update, regimenID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

func (p *PGRepo) ViewerState(ctx context.Context, regimenID, userID string) (bool, bool, error) {
	var liked, saved bool
	err := p.DB.QueryRowContext(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM regimen_likes WHERE regimen_id = $1 AND user_id = $2),
			EXISTS (SELECT 1 FROM regimen_saves WHERE regimen_id = $1 AND user_id = $2)
	`, regimenID, userID).Scan(&liked, &saved)
	return liked, saved, err
}

func (p *PGRepo) ListSaved(ctx context.Context, userID string, limit, offset int) ([]Regimen, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT `+prefixed("r.", regimenColumns)+`
		FROM regimen_saves s
		JOIN regimens r ON r.id = s.regimen_id
		WHERE s.user_id = $1 AND r.deleted_at IS NULL
			AND (r.author_id = $1 OR (r.visibility = 'public' AND r.status = 'active'))
		ORDER BY s.created_at DESC, r.id ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, err := collect(rows)
	for i := range items {
		items[i].Saved = true
	}
	return items, err
}

func (p *PGRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	var s Stats
	err := p.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM regimens WHERE author_id = $1 AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(likes_count), 0) FROM regimens WHERE author_id = $1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM regimen_saves s JOIN regimens r ON r.id = s.regimen_id
				WHERE s.user_id = $1 AND r.deleted_at IS NULL)
	`, userID).Scan(&s.Authored, &s.LikesReceived, &s.Saved)
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegimen(row scanner) (Regimen, error) {
	var (
		r           Regimen
		description sql.NullString
		hairType    sql.NullString
		photoKey    sql.NullString
		steps       []byte
		tags        []byte
		deletedAt   sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.AuthorID, &r.Title, &description, &steps, &tags, &hairType, &photoKey,
		&r.Visibility, &r.Status, &r.LikesCount, &r.SavesCount, &r.CommentsCount,
		&r.CreatedAt, &r.UpdatedAt, &deletedAt); err != nil {
		return Regimen{}, err
	}
	r.Description = description.String
	r.HairType = hairType.String
	r.PhotoKey = photoKey.String
	if deletedAt.Valid {
		t := deletedAt.Time
		r.DeletedAt = &t
	}
	if err := json.Unmarshal(steps, &r.Steps); err != nil {
		return Regimen{}, fmt.Errorf("decode steps: %w", err)
	}
	if err := json.Unmarshal(tags, &r.Tags); err != nil {
		return Regimen{}, fmt.Errorf("decode tags: %w", err)
	}
	return r, nil
}

func collect(rows *sql.Rows) ([]Regimen, error) {
	out := []Regimen{}
	for rows.Next() {
		r, err := scanRegimen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func marshalLists(r Regimen) ([]byte, []byte, error) {
	steps := r.Steps
	if steps == nil {
		steps = []Step{}
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, nil, fmt.Errorf("encode steps: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	return stepsJSON, tagsJSON, nil
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
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

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
