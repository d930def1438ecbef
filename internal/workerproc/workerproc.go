// Package workerproc decodes moderation queue messages and runs the review.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"haircare-backend/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrUnsupported indicates a message this worker cannot act on: an unknown
// kind or a missing target.
type ErrUnsupported struct {
	Meta      MessageMeta
	Kind      string
	RequestID string
}

func (e ErrUnsupported) Error() string {
	if e.Kind == "" {
		return "unsupported message"
	}
	return "unsupported message kind " + e.Kind
}

// ErrProcess indicates the review failed after successful parsing.
type ErrProcess struct {
	TargetType string
	TargetID   string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "review report"
	}
	return "review report: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Reviewer runs the moderation check for one target.
type Reviewer interface {
	Review(ctx context.Context, targetType, targetID string) (hidden bool, err error)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if msg.Kind != queue.KindReport || strings.TrimSpace(msg.TargetID) == "" || strings.TrimSpace(msg.TargetType) == "" {
		return msg, meta, ErrUnsupported{Meta: meta, Kind: msg.Kind, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage runs the review for a parsed message.
func HandleMessage(ctx context.Context, reviewer Reviewer, msg queue.Message) (bool, error) {
	if reviewer == nil {
		return false, errors.New("moderation service not configured")
	}
	hidden, err := reviewer.Review(ctx, msg.TargetType, msg.TargetID)
	if err != nil {
		return false, ErrProcess{TargetType: msg.TargetType, TargetID: msg.TargetID, RequestID: msg.RequestID, Err: err}
	}
	return hidden, nil
}
