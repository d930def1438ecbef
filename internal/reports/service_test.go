package reports

import (
	"context"
	"errors"
	"testing"

	"haircare-backend/internal/comments"
	"haircare-backend/internal/queue"
	"haircare-backend/internal/regimens"
)

type fakeQueue struct {
	sent []queue.Message
	err  error
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	svc      *Service
	regimens *regimens.Service
	comments *comments.Service
	regimen  regimens.Regimen
}

func newFixture(t *testing.T, q queue.Client, threshold int) fixture {
	t.Helper()
	regs := regimens.NewService(regimens.NewMemoryRepo(), nil, nil)
	cmts := comments.NewService(comments.NewMemoryRepo(), regs)
	r, err := regs.Create(context.Background(), "google:author", regimens.CreateInput{
		Title: "Wash day",
		Steps: []regimens.Step{{Title: "Shampoo"}},
	})
	if err != nil {
		t.Fatalf("create regimen: %v", err)
	}
	return fixture{
		svc:      NewService(NewMemoryRepo(), regs, cmts, q, threshold),
		regimens: regs,
		comments: cmts,
		regimen:  r,
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t, nil, 3)
	tests := []struct {
		name string
		in   Input
		want error
	}{
		{name: "bad target type", in: Input{TargetType: "user", TargetID: "x", Reason: "spam"}, want: ErrInvalidInput},
		{name: "missing target id", in: Input{TargetType: "regimen", Reason: "spam"}, want: ErrInvalidInput},
		{name: "bad reason", in: Input{TargetType: "regimen", TargetID: f.regimen.ID, Reason: "boring"}, want: ErrInvalidInput},
		{name: "unknown regimen", in: Input{TargetType: "regimen", TargetID: "missing", Reason: "spam"}, want: ErrTargetNotFound},
		{name: "unknown comment", in: Input{TargetType: "comment", TargetID: "missing", Reason: "spam"}, want: ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := f.svc.Create(context.Background(), "google:1", tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRepeatReportReturnsExisting(t *testing.T) {
	q := &fakeQueue{}
	f := newFixture(t, q, 3)
	in := Input{TargetType: "Regimen", TargetID: f.regimen.ID, Reason: "SPAM"}

	first, created, err := f.svc.Create(context.Background(), "google:1", in)
	if err != nil || !created {
		t.Fatalf("first Create: created=%v err=%v", created, err)
	}
	again, created, err := f.svc.Create(context.Background(), "google:1", in)
	if err != nil || created {
		t.Fatalf("repeat Create: created=%v err=%v", created, err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected existing report %s, got %s", first.ID, again.ID)
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected one queued job, got %d", len(q.sent))
	}
	msg := q.sent[0]
	if msg.Kind != queue.KindReport || msg.TargetType != TargetRegimen || msg.TargetID != f.regimen.ID || msg.ReportID != first.ID {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestInlineModerationHidesAtThreshold(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, 2)
	in := Input{TargetType: TargetRegimen, TargetID: f.regimen.ID, Reason: "spam"}

	if _, _, err := f.svc.Create(ctx, "google:1", in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.regimens.Get(ctx, "google:9", f.regimen.ID); err != nil {
		t.Fatalf("expected regimen visible below threshold, got %v", err)
	}
	if _, _, err := f.svc.Create(ctx, "google:2", in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.regimens.Get(ctx, "google:9", f.regimen.ID); !errors.Is(err, regimens.ErrNotFound) {
		t.Fatalf("expected hidden regimen, got %v", err)
	}
	if _, err := f.regimens.Get(ctx, "google:author", f.regimen.ID); err != nil {
		t.Fatalf("author should still see hidden regimen: %v", err)
	}
}

func TestQueueFailureFallsBackToInlineReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeQueue{err: errors.New("sqs down")}, 1)
	c, err := f.comments.Create(ctx, "google:1", f.regimen.ID, "buy my stuff")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, _, err := f.svc.Create(ctx, "google:2", Input{TargetType: TargetComment, TargetID: c.ID, Reason: "spam"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := f.comments.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != comments.StatusHidden {
		t.Fatalf("expected hidden comment, got %q", got.Status)
	}
}

func TestReviewIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeQueue{}, 1)
	if _, _, err := f.svc.Create(ctx, "google:1", Input{TargetType: TargetRegimen, TargetID: f.regimen.ID, Reason: "other"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	hidden, err := f.svc.Review(ctx, TargetRegimen, f.regimen.ID)
	if err != nil || !hidden {
		t.Fatalf("first Review: hidden=%v err=%v", hidden, err)
	}
	hidden, err = f.svc.Review(ctx, TargetRegimen, f.regimen.ID)
	if err != nil || hidden {
		t.Fatalf("second Review: hidden=%v err=%v", hidden, err)
	}
	if hidden, err := f.svc.Review(ctx, TargetRegimen, "deleted-or-missing"); err != nil || hidden {
		t.Fatalf("missing target: hidden=%v err=%v", hidden, err)
	}
}
