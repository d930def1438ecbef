// Package llm defines a provider-neutral chat completion client.
package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral completion request. System is sent as the
// provider's system instruction. JSON asks for a JSON object response.
type ChatRequest struct {
	System      string
	Messages    []Message
	JSON        bool
	Temperature *float32
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    *Usage `json:"usage,omitempty"`
}

// Client sends chat requests to a hosted model.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

var (
	// ErrNotConfigured is returned when no provider is wired.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrEmptyResponse is returned when the provider answers without content.
	ErrEmptyResponse = errors.New("llm response empty")
)

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.Status, e.Message)
}

// Placeholder is used when LLM_PROVIDER=none or credentials are missing.
type Placeholder struct{}

// Chat returns ErrNotConfigured.
func (Placeholder) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	return ChatResponse{}, ErrNotConfigured
}

// Temperature is a helper for ChatRequest.Temperature.
func Temperature(v float32) *float32 {
	return &v
}
