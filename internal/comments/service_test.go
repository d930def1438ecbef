package comments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"haircare-backend/internal/regimens"
)

type fixture struct {
	svc      *Service
	regimens *regimens.Service
	regimen  regimens.Regimen
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	regs := regimens.NewService(regimens.NewMemoryRepo(), nil, nil)
	r, err := regs.Create(context.Background(), "google:author", regimens.CreateInput{
		Title: "Wash day",
		Steps: []regimens.Step{{Title: "Shampoo"}},
	})
	if err != nil {
		t.Fatalf("create regimen: %v", err)
	}
	svc := NewService(NewMemoryRepo(), regs)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return fixture{svc: svc, regimens: regs, regimen: r}
}

func (f fixture) commentsCount(t *testing.T) int {
	t.Helper()
	r, err := f.regimens.Get(context.Background(), "", f.regimen.ID)
	if err != nil {
		t.Fatalf("get regimen: %v", err)
	}
	return r.CommentsCount
}

func TestCreateListsOldestFirstAndCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Create(ctx, "google:1", f.regimen.ID, "  Love this  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, "google:2", f.regimen.ID, "Trying it tonight"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := f.svc.List(ctx, "", f.regimen.ID, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID != first.ID || items[0].Content != "Love this" {
		t.Fatalf("unexpected comments %+v", items)
	}
	if got := f.commentsCount(t); got != 2 {
		t.Fatalf("expected count 2, got %d", got)
	}
}

func TestCreateValidatesContentAndRegimen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, content := range []string{"   ", strings.Repeat("x", 1001)} {
		if _, err := f.svc.Create(ctx, "google:1", f.regimen.ID, content); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	}
	if _, err := f.svc.Create(ctx, "google:1", "missing", "hi"); !errors.Is(err, regimens.ErrNotFound) {
		t.Fatalf("expected regimens.ErrNotFound, got %v", err)
	}
}

func TestDeletePermissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	byOne, _ := f.svc.Create(ctx, "google:1", f.regimen.ID, "first")
	byTwo, _ := f.svc.Create(ctx, "google:2", f.regimen.ID, "second")

	if err := f.svc.Delete(ctx, "google:3", byOne.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, "google:1", byOne.ID); err != nil {
		t.Fatalf("author Delete: %v", err)
	}
	if err := f.svc.Delete(ctx, "google:author", byTwo.ID); err != nil {
		t.Fatalf("regimen author Delete: %v", err)
	}
	if err := f.svc.Delete(ctx, "google:1", byOne.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat, got %v", err)
	}
	if got := f.commentsCount(t); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
}

func TestHiddenCommentsDropOutOfList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c, _ := f.svc.Create(ctx, "google:1", f.regimen.ID, "spam spam")

	if err := f.svc.SetStatus(ctx, c.ID, StatusHidden); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := f.svc.SetStatus(ctx, c.ID, StatusHidden); err != nil {
		t.Fatalf("repeat SetStatus: %v", err)
	}
	items, _ := f.svc.List(ctx, "", f.regimen.ID, 0, 0)
	if len(items) != 0 {
		t.Fatalf("expected hidden comment to be excluded, got %+v", items)
	}
	if got := f.commentsCount(t); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
	if err := f.svc.Delete(ctx, "google:1", c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := f.commentsCount(t); got != 0 {
		t.Fatalf("expected count to stay 0, got %d", got)
	}
}
