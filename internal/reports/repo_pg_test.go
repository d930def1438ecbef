package reports

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateReturnsExistingOnConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	earlier := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO reports .* ON CONFLICT \\(reporter_id, target_type, target_id\\) DO NOTHING RETURNING id").
		WithArgs("rep-2", "google:1", "regimen", "reg-1", "spam", nil, now).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM reports WHERE reporter_id = \\$1 AND target_type = \\$2 AND target_id = \\$3").
		WithArgs("google:1", "regimen", "reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reporter_id", "target_type", "target_id", "reason", "details", "created_at"}).
			AddRow("rep-1", "google:1", "regimen", "reg-1", "harassment", "rude", earlier))

	repo := &PGRepo{DB: db}
	got, created, err := repo.Create(context.Background(), Report{
		ID:         "rep-2",
		ReporterID: "google:1",
		TargetType: TargetRegimen,
		TargetID:   "reg-1",
		Reason:     "spam",
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created || got.ID != "rep-1" || got.Details != "rude" || !got.CreatedAt.Equal(earlier) {
		t.Fatalf("unexpected result created=%v report=%+v", created, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
