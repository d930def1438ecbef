// Package chat proxies hair-care questions to the configured language model
// under a per-identity daily quota.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"haircare-backend/internal/llm"
	"haircare-backend/internal/quiz"
	"haircare-backend/internal/shared/metrics"
	"haircare-backend/internal/shared/telemetry"
	"haircare-backend/internal/usage"
)

const (
	maxMessages      = 20
	maxContentLength = 4000
)

var (
	ErrInvalidInput = errors.New("invalid chat request")
	ErrUpstream     = errors.New("assistant unavailable")
)

const systemPrompt = `You are a friendly hair-care assistant inside a hair-care app.
Give practical, concise advice about hair routines, ingredients and products.
Do not diagnose medical conditions; suggest seeing a dermatologist for scalp pain, sudden hair loss or rashes.
If a question is unrelated to hair or scalp care, politely steer the conversation back.`

// QuizSource returns a user's stored quiz answers, nil when none were saved.
type QuizSource interface {
	Quiz(ctx context.Context, userID string) (*quiz.Answers, error)
}

// Request is the body of POST /chat.
type Request struct {
	Messages []llm.Message `json:"messages"`
}

// Reply is returned to the client.
type Reply struct {
	Reply    string      `json:"reply"`
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Usage    usage.Usage `json:"usage"`
}

// Service validates requests, checks quota and calls the model.
type Service struct {
	Client  llm.Client
	Usage   *usage.Service
	Quizzes QuizSource
}

func NewService(client llm.Client, usageSvc *usage.Service, quizzes QuizSource) *Service {
	return &Service{Client: client, Usage: usageSvc, Quizzes: quizzes}
}

// Send answers the conversation. The quota unit is consumed only after the
// provider replies.
func (s *Service) Send(ctx context.Context, userID string, req Request) (Reply, error) {
	messages, err := validate(req.Messages)
	if err != nil {
		return Reply{}, err
	}
	ok, current, err := s.Usage.CanConsume(ctx, userID, 1)
	if err != nil {
		return Reply{}, fmt.Errorf("check chat quota: %w", err)
	}
	if !ok {
		return Reply{Usage: current}, usage.ErrLimitReached
	}

	metrics.IncChatRequests()
	start := time.Now()
	resp, err := s.Client.Chat(ctx, llm.ChatRequest{
		System:      s.systemPrompt(ctx, userID),
		Messages:    messages,
		Temperature: llm.Temperature(0.7),
	})
	metrics.ObserveChatDurationMs(metrics.SinceMillis(start))
	if err != nil {
		metrics.IncChatFailures()
		telemetry.Error("chat.upstream_failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
		return Reply{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	consumed, err := s.Usage.Consume(ctx, userID, 1)
	if err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			return Reply{Usage: consumed}, err
		}
		return Reply{}, fmt.Errorf("consume chat quota: %w", err)
	}
	return Reply{
		Reply:    resp.Content,
		Provider: resp.Provider,
		Model:    resp.Model,
		Usage:    consumed,
	}, nil
}

func (s *Service) systemPrompt(ctx context.Context, userID string) string {
	if s.Quizzes == nil {
		return systemPrompt
	}
	answers, err := s.Quizzes.Quiz(ctx, userID)
	if err != nil {
		telemetry.Warn("chat.profile_lookup_failed", map[string]any{"user_id": userID, "error": err})
		return systemPrompt
	}
	if answers == nil {
		return systemPrompt
	}
	return systemPrompt + "\nUser hair profile: " + answers.Summary()
}

func validate(messages []llm.Message) ([]llm.Message, error) {
	if len(messages) == 0 || len(messages) > maxMessages {
		return nil, fmt.Errorf("%w: between 1 and %d messages are required", ErrInvalidInput, maxMessages)
	}
	out := make([]llm.Message, 0, len(messages))
	for i, m := range messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != llm.RoleUser && role != llm.RoleAssistant {
			return nil, fmt.Errorf("%w: messages[%d].role must be user or assistant", ErrInvalidInput, i)
		}
		content := strings.TrimSpace(m.Content)
		if content == "" || utf8.RuneCountInString(content) > maxContentLength {
			return nil, fmt.Errorf("%w: messages[%d].content must be 1-%d characters", ErrInvalidInput, i, maxContentLength)
		}
		out = append(out, llm.Message{Role: role, Content: content})
	}
	if out[len(out)-1].Role != llm.RoleUser {
		return nil, fmt.Errorf("%w: the last message must come from the user", ErrInvalidInput)
	}
	return out, nil
}
