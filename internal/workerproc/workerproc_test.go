package workerproc

import (
	"context"
	"errors"
	"testing"

	"haircare-backend/internal/queue"
)

type fakeReviewer struct {
	hidden bool
	err    error
	calls  []string
}

func (f *fakeReviewer) Review(ctx context.Context, targetType, targetID string) (bool, error) {
	f.calls = append(f.calls, targetType+"/"+targetID)
	return f.hidden, f.err
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr func(error) bool
	}{
		{name: "valid", body: `{"kind":"report","targetType":"regimen","targetId":"reg-1"}`},
		{name: "empty", body: "  ", wantErr: func(err error) bool { _, ok := err.(ErrEmptyBody); return ok }},
		{name: "bad json", body: "{oops", wantErr: func(err error) bool { _, ok := err.(ErrDecode); return ok }},
		{name: "unknown kind", body: `{"kind":"digest","targetType":"regimen","targetId":"reg-1"}`, wantErr: func(err error) bool { _, ok := err.(ErrUnsupported); return ok }},
		{name: "missing target", body: `{"kind":"report","targetType":"regimen"}`, wantErr: func(err error) bool { _, ok := err.(ErrUnsupported); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, meta, err := ParseMessage(tt.body)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if meta.BodyLen != len(tt.body) || meta.BodySHA == "" {
					t.Fatalf("unexpected meta %+v", meta)
				}
				return
			}
			if !tt.wantErr(err) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
		})
	}
}

func TestHandleMessageWrapsReviewFailure(t *testing.T) {
	reviewer := &fakeReviewer{err: errors.New("db down")}
	msg := queue.Message{Kind: queue.KindReport, TargetType: "comment", TargetID: "c-1", RequestID: "req-1"}

	_, err := HandleMessage(context.Background(), reviewer, msg)
	var procErr ErrProcess
	if !errors.As(err, &procErr) || procErr.TargetID != "c-1" || procErr.RequestID != "req-1" {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if len(reviewer.calls) != 1 || reviewer.calls[0] != "comment/c-1" {
		t.Fatalf("unexpected calls %v", reviewer.calls)
	}

	ok := &fakeReviewer{hidden: true}
	hidden, err := HandleMessage(context.Background(), ok, msg)
	if err != nil || !hidden {
		t.Fatalf("expected hidden=true, got %v %v", hidden, err)
	}
}
