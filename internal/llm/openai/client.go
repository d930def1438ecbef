// Package openai implements llm.Client for OpenAI and Azure OpenAI chat completions.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"haircare-backend/internal/llm"
	"haircare-backend/internal/shared/telemetry"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

const defaultTimeout = 60 * time.Second

// Client implements llm.Client over the chat-completions wire format.
type Client struct {
	provider   string
	endpoint   string
	model      string
	authHeader string
	authValue  string
	httpClient *http.Client
}

// NewClient constructs an OpenAI client.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return &Client{
		provider:   "openai",
		endpoint:   apiURL,
		model:      model,
		authHeader: "Authorization",
		authValue:  "Bearer " + apiKey,
		httpClient: &http.Client{Timeout: orDefault(timeout)},
	}, nil
}

// NewAzureClient constructs a client for an Azure OpenAI deployment.
func NewAzureClient(endpoint, apiKey, deployment, apiVersion string, timeout time.Duration) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(deployment) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_DEPLOYMENT is required")
	}
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = "2024-06-01"
	}
	return &Client{
		provider: "azure",
		endpoint: fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			endpoint, url.PathEscape(deployment), url.QueryEscape(apiVersion)),
		model:      deployment,
		authHeader: "api-key",
		authValue:  apiKey,
		httpClient: &http.Client{Timeout: orDefault(timeout)},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Chat sends the conversation. Models that reject a custom temperature are
// retried once with the temperature omitted.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	body := c.buildRequest(req)
	if isGPT5(c.model) {
		body.Temperature = nil
	}

	resp, err := c.send(ctx, body)
	if err != nil && body.Temperature != nil && isTemperatureUnsupported(err) {
		telemetry.Warn("llm.temperature_unsupported", map[string]any{"provider": c.provider, "model": c.model})
		body.Temperature = nil
		resp, err = c.send(ctx, body)
	}
	if err != nil {
		return llm.ChatResponse{}, err
	}
	return resp, nil
}

func (c *Client) buildRequest(req llm.ChatRequest) chatRequest {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	body := chatRequest{
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if c.provider == "openai" {
		body.Model = c.model
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return body
}

func (c *Client) send(ctx context.Context, body chatRequest) (llm.ChatResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return llm.ChatResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return llm.ChatResponse{}, err
	}
	httpReq.Header.Set(c.authHeader, c.authValue)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.ChatResponse{}, fmt.Errorf("%s request timeout: %w", c.provider, err)
		}
		return llm.ChatResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.ChatResponse{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return llm.ChatResponse{}, &llm.StatusError{Provider: c.provider, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return llm.ChatResponse{}, fmt.Errorf("%s response parse: %w", c.provider, err)
	}
	if parsed.Error != nil {
		status := resp.StatusCode
		if status < 400 {
			status = http.StatusBadRequest
		}
		return llm.ChatResponse{}, &llm.StatusError{
			Provider: c.provider,
			Status:   status,
			Message:  fmt.Sprintf("%s (%s)", parsed.Error.Message, parsed.Error.Type),
		}
	}
	if resp.StatusCode >= 400 {
		return llm.ChatResponse{}, &llm.StatusError{Provider: c.provider, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if len(parsed.Choices) == 0 {
		return llm.ChatResponse{}, fmt.Errorf("%s response missing choices", c.provider)
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return llm.ChatResponse{}, llm.ErrEmptyResponse
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	out := llm.ChatResponse{Content: content, Provider: c.provider, Model: model}
	if parsed.Usage != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}
	logUsage(c.provider, model, out.Usage)
	return out, nil
}

func logUsage(provider, model string, usage *llm.Usage) {
	fields := map[string]any{"provider": provider, "model": model}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func isTemperatureUnsupported(err error) bool {
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	msg := strings.ToLower(statusErr.Message)
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

func orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultTimeout
	}
	return timeout
}

var _ llm.Client = (*Client)(nil)
