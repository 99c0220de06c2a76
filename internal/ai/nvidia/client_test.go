package nvidia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	client, err := New(Config{
		Endpoint:   endpoint,
		Model:      "test-model",
		APIKey:     "test-key",
		MaxRetries: 3,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.backoffBase = 0

	return client
}

func completionBody(content string) string {
	return `{"choices": [{"message": {"role": "assistant", "content": ` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestCompleteSendsSystemInstructionFirst(t *testing.T) {
	t.Parallel()

	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody("What drew you to Go?")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Complete(context.Background(), ai.Request{
		SystemInstruction: "You are an interviewer.",
		Messages: []ai.Message{
			{Role: ai.RoleAssistant, Content: "Hello!"},
			{Role: ai.RoleUser, Content: "Hi."},
		},
		Temperature: 0.8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text != "What drew you to Go?" {
		t.Fatalf("unexpected completion: %q", text)
	}
	if len(captured.Messages) != 3 || captured.Messages[0].Role != ai.RoleSystem {
		t.Fatalf("expected leading system message, got %+v", captured.Messages)
	}
	if captured.Temperature != 0.8 {
		t.Fatalf("unexpected temperature: %v", captured.Temperature)
	}
	if captured.MaxTokens != defaultMaxTokens || captured.TopP != defaultTopP {
		t.Fatalf("expected default sampling parameters, got %+v", captured)
	}
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionBody("retry ok")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Complete(context.Background(), ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "retry ok" {
		t.Fatalf("unexpected completion: %q", text)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestCompleteStopsAfterRetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ai.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ai.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestCompleteEmptyCompletionIsMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(completionBody("   ")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Complete(context.Background(), ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
