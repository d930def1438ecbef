package regimens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var regimenRowColumns = []string{
	"id", "author_id", "title", "description", "steps", "tags", "hair_type", "photo_key", "visibility", "status",
	"likes_count", "saves_count", "comments_count", "created_at", "updated_at", "deleted_at",
}

func TestPGRepoSetLikedCountsOnlyNewRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO regimen_likes \\(regimen_id, user_id\\) VALUES \\(\\$1, \\$2\\) ON CONFLICT DO NOTHING").
		WithArgs("reg-1", "google:2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE regimens SET likes_count = likes_count \\+ 1 WHERE id = \\$1").
		WithArgs("reg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO regimen_likes").
		WithArgs("reg-1", "google:2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	changed, err := repo.SetLiked(context.Background(), "reg-1", "google:2", true)
	if err != nil || !changed {
		t.Fatalf("first like: changed=%v err=%v", changed, err)
	}
	changed, err = repo.SetLiked(context.Background(), "reg-1", "google:2", true)
	if err != nil || changed {
		t.Fatalf("repeat like: changed=%v err=%v", changed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUnsaveNeverGoesNegative(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM regimen_saves WHERE regimen_id = \\$1 AND user_id = \\$2").
		WithArgs("reg-1", "google:2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE regimens SET saves_count = GREATEST\\(saves_count - 1, 0\\)").
		WithArgs("reg-1").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if _, err := repo.SetSaved(context.Background(), "reg-1", "google:2", false); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListBuildsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(regimenRowColumns).AddRow(
		"reg-1", "google:1", "Wash day", nil, []byte(`[{"order":1,"title":"Shampoo"}]`), []byte(`["curly"]`),
		"curly", nil, "public", "active", 3, 1, 0, created, created, nil,
	)
	mock.ExpectQuery("WHERE deleted_at IS NULL AND status = 'active' AND visibility = 'public' " +
		"AND tags @> jsonb_build_array\\(\\$1::text\\) " +
		"AND author_id IN \\(SELECT jsonb_array_elements_text\\(\\$2::jsonb\\)\\) " +
		"ORDER BY likes_count DESC, saves_count DESC, created_at DESC, id ASC LIMIT \\$3 OFFSET \\$4").
		WithArgs("curly", []byte(`["google:1","google:2"]`), 20, 0).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), Filter{
		Tag:       "curly",
		AuthorIDs: []string{"google:1", "google:2"},
		Sort:      SortPopular,
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []Regimen{{
		ID:         "reg-1",
		AuthorID:   "google:1",
		Title:      "Wash day",
		Steps:      []Step{{Order: 1, Title: "Shampoo"}},
		Tags:       []string{"curly"},
		HairType:   "curly",
		Visibility: VisibilityPublic,
		Status:     StatusActive,
		LikesCount: 3,
		SavesCount: 1,
		CreatedAt:  created,
		UpdatedAt:  created,
	}}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDMapsNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM regimens WHERE id = \\$1 AND deleted_at IS NULL").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoSoftDeleteMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE regimens SET deleted_at = \\$2").
		WithArgs("reg-1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SoftDelete(context.Background(), "reg-1", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
