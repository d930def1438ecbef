package queue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeMessageReadsReportJob(t *testing.T) {
	payload := []byte(`{"kind":"report","targetType":"comment","targetId":"c-1","reportId":"r-9","enqueuedAt":"2026-03-01T10:00:00Z","version":1}`)

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	want := Message{
		Kind:       KindReport,
		TargetType: "comment",
		TargetID:   "c-1",
		ReportID:   "r-9",
		EnqueuedAt: "2026-03-01T10:00:00Z",
		Version:    1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMessageRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeMessage([]byte("{bad")); err == nil {
		t.Fatalf("expected error")
	}
}
