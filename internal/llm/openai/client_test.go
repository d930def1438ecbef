package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"haircare-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})
}

func TestChatSendsSystemAndParsesReply(t *testing.T) {
	var got map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini-2024","choices":[{"message":{"role":"assistant","content":"Try a leave-in."}}],"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Chat(context.Background(), llm.ChatRequest{
		System:      "You are a hair-care assistant.",
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Help with frizz"}},
		Temperature: llm.Temperature(0.4),
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "Try a leave-in." || resp.Provider != "openai" || resp.Usage.TotalTokens != 14 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	messages, _ := got["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(messages))
	}
	if first, _ := messages[0].(map[string]any); first["role"] != "system" {
		t.Fatalf("expected system message first, got %v", messages[0])
	}
	if _, ok := got["response_format"]; ok {
		t.Fatalf("response_format should be omitted for non-JSON requests")
	}
}

func TestChatRetriesWithoutTemperature(t *testing.T) {
	var mu sync.Mutex
	var bodies []map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		bodies = append(bodies, payload)
		n := len(bodies)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported value: 'temperature' does not support 0.2 with this model.","type":"invalid_request_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	client, err := NewClient("test-key", "o3-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Chat(context.Background(), llm.ChatRequest{JSON: true, Temperature: llm.Temperature(0.2)}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(bodies))
	}
	if _, ok := bodies[1]["temperature"]; ok {
		t.Fatalf("expected retry to omit temperature")
	}
}

func TestChatMapsServerErrors(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream busy"))
	})

	client, _ := NewClient("test-key", "gpt-4o-mini", 0)
	_, err := client.Chat(context.Background(), llm.ChatRequest{})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if !llm.IsTransient(err) {
		t.Fatalf("503 should be transient")
	}
}

func TestAzureClientUsesDeploymentURL(t *testing.T) {
	var path, apiVersion, apiKey string
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiVersion = r.URL.Query().Get("api-version")
		apiKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer server.Close()

	client, err := NewAzureClient(server.URL+"/", "azure-key", "hair-gpt", "2024-06-01", 0)
	if err != nil {
		t.Fatalf("NewAzureClient: %v", err)
	}
	resp, err := client.Chat(context.Background(), llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if path != "/openai/deployments/hair-gpt/chat/completions" || apiVersion != "2024-06-01" || apiKey != "azure-key" {
		t.Fatalf("unexpected request path=%s version=%s key=%s", path, apiVersion, apiKey)
	}
	if _, ok := body["model"]; ok {
		t.Fatalf("azure requests should not carry a model field")
	}
	if resp.Provider != "azure" || resp.Model != "hair-gpt" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
