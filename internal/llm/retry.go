package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"haircare-backend/internal/shared/telemetry"
)

const defaultRetryDelay = 300 * time.Millisecond

type retrying struct {
	next  Client
	delay time.Duration
}

// Retrying wraps a client so transient failures are retried once.
func Retrying(next Client) Client {
	return &retrying{next: next, delay: defaultRetryDelay}
}

func (r *retrying) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	resp, err := r.next.Chat(ctx, req)
	if err == nil || !IsTransient(err) || ctx.Err() != nil {
		return resp, err
	}
	telemetry.Warn("llm.retry", map[string]any{"error": err})

	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ChatResponse{}, ctx.Err()
	case <-timer.C:
	}
	return r.next.Chat(ctx, req)
}

// IsTransient reports whether err is worth retrying: timeouts, rate limits,
// server errors and dropped connections.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == 429 || statusErr.Status >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "eof")
}
