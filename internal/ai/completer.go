package ai

import (
	"context"
	"errors"
)

// Message roles understood by the completion backends.
const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

var (
	// ErrUnavailable indicates the backend could not serve the request after
	// its retry budget was exhausted (network, auth, rate limit).
	ErrUnavailable = errors.New("text generation backend unavailable")

	// ErrMalformedResponse indicates the backend answered but the result
	// shape was unusable (e.g. empty completion).
	ErrMalformedResponse = errors.New("malformed text generation response")
)

// Message is a single conversation turn sent to a backend.
type Message struct {
	Role    string
	Content string
}

// Request carries everything a backend needs for one completion call.
type Request struct {
	SystemInstruction string
	Messages          []Message
	Temperature       float64
	MaxTokens         int
}

// Completer produces a completion for the given request. Implementations own
// their retry and timeout policy; callers treat a returned error as final.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
