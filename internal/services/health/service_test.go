package health

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatusWithoutChecks(t *testing.T) {
	got := NewService().Status(context.Background())
	if !got.OK || got.Checks != nil {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestStatusReportsFailures(t *testing.T) {
	svc := NewService()
	svc.Register("database", func(ctx context.Context) error { return nil })
	svc.Register("cache", func(ctx context.Context) error { return errors.New("connection refused") })
	svc.Register("ignored", nil)

	got := svc.Status(context.Background())
	want := Status{OK: false, Checks: map[string]string{"database": "ok", "cache": "connection refused"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
}
