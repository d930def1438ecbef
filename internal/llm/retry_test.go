package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return ChatResponse{}, s.errs[i]
	}
	return ChatResponse{Content: "ok"}, nil
}

func TestRetryingRetriesTransientOnce(t *testing.T) {
	inner := &scriptedClient{errs: []error{&StatusError{Provider: "openai", Status: 503, Message: "busy"}}}
	client := &retrying{next: inner, delay: time.Millisecond}

	resp, err := client.Chat(context.Background(), ChatRequest{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "ok" || inner.calls != 2 {
		t.Fatalf("expected success on second call, got %q after %d calls", resp.Content, inner.calls)
	}
}

func TestRetryingGivesUpAfterSecondFailure(t *testing.T) {
	transient := fmt.Errorf("openai request timeout: %w", context.DeadlineExceeded)
	inner := &scriptedClient{errs: []error{transient, transient, nil}}
	client := &retrying{next: inner, delay: time.Millisecond}

	if _, err := client.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if inner.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", inner.calls)
	}
}

func TestRetryingSkipsPermanentErrors(t *testing.T) {
	inner := &scriptedClient{errs: []error{&StatusError{Provider: "openai", Status: 400, Message: "bad"}}}
	client := &retrying{next: inner, delay: time.Millisecond}

	if _, err := client.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("expected no retry, got %d calls", inner.calls)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: context.Canceled, want: false},
		{err: ErrNotConfigured, want: false},
		{err: &StatusError{Status: 429}, want: true},
		{err: &StatusError{Status: 502}, want: true},
		{err: &StatusError{Status: 401}, want: false},
		{err: errors.New("read: connection reset by peer"), want: true},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestPlaceholderNotConfigured(t *testing.T) {
	if _, err := (Placeholder{}).Chat(context.Background(), ChatRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
