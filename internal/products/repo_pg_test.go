package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetByIDDecodesLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "barcode", "name", "brand", "category", "description", "price", "currency", "image_url",
		"ingredients", "tags", "hair_types", "cruelty_free", "vegan", "sulfate_free", "silicone_free", "eco_packaging",
		"rating", "review_count", "source", "created_at", "updated_at",
	}).AddRow(
		"p1", nil, "Curl Cream", "Acme", "styler", nil, 12.5, "USD", nil,
		[]byte(`["aqua","glycerin"]`), []byte(`["curly"]`), []byte(`[]`), true, false, true, false, false,
		4.5, 10, "catalog", now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM products WHERE id = \\$1").
		WithArgs("p1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	p, err := repo.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(p.Ingredients) != 2 || p.Tags[0] != "curly" || p.Barcode != "" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListBuildsFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM products WHERE category = \\$1 AND price <= \\$2 ORDER BY price ASC").
		WithArgs("shampoo", 20.0, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	items, err := repo.List(context.Background(), Filter{Category: "shampoo", MaxPrice: 20, Sort: SortPrice, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO products").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := &PGRepo{DB: db}
	p, err := repo.Upsert(context.Background(), Product{ID: "p1", Name: "Oil", Category: "oil", Currency: "USD", Source: SourceCatalog})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !p.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at from RETURNING")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
