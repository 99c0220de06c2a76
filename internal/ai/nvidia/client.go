package nvidia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/logger"
	"github.com/abhictrl/Reflexion-Interviewer/internal/utils"
)

const (
	defaultEndpoint   = "https://integrate.api.nvidia.com/v1/chat/completions"
	defaultModel      = "nvidia/nemotron-super-49b-v1_5"
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 3
	defaultMaxTokens  = 2048
	defaultTopP       = 0.9

	maxLogLength = 200
)

// Config holds the NVIDIA NIM connection settings.
type Config struct {
	Endpoint   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	MaxTokens  int
	TopP       float64
}

// Client talks to an NVIDIA NIM (OpenAI-compatible) chat-completions
// endpoint. It owns a bounded retry budget with exponential backoff for
// transient upstream failures.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	model       string
	apiKey      string
	maxRetries  int
	maxTokens   int
	topP        float64
	backoffBase time.Duration
	logger      *zap.Logger
}

// New creates a NIM client. The API key is required; everything else falls
// back to sensible defaults.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("nvidia api key is required")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	topP := cfg.TopP
	if topP <= 0 {
		topP = defaultTopP
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpoint:    endpoint,
		model:       model,
		apiKey:      apiKey,
		maxRetries:  maxRetries,
		maxTokens:   maxTokens,
		topP:        topP,
		backoffBase: time.Second,
		logger:      logger.WithCommonFields(log, "nvidia", model),
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request, retrying transient upstream
// failures with exponential backoff.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	messages := make([]wireMessage, 0, len(req.Messages)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, wireMessage{Role: ai.RoleSystem, Content: req.SystemInstruction})
	}
	for _, msg := range req.Messages {
		messages = append(messages, wireMessage{Role: msg.Role, Content: msg.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
		TopP:        c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase << (attempt - 1)
			c.logger.Debug("retrying completion request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			if err := utils.WaitFor(ctx, backoff); err != nil {
				return "", err
			}
		}

		text, retryable, err := c.send(ctx, payload)
		if err == nil {
			return text, nil
		}

		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: after %d attempts: %v", ai.ErrUnavailable, c.maxRetries, lastErr)
}

func (c *Client) send(ctx context.Context, payload []byte) (text string, retryable bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("%w: read response: %v", ai.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// handled below
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return "", true, fmt.Errorf("%w: upstream status %s", ai.ErrUnavailable, resp.Status)
	default:
		return "", false, fmt.Errorf("%w: upstream status %s: %s", ai.ErrUnavailable, resp.Status, utils.TruncateForLog(string(body), maxLogLength))
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("%w: decode response: %v", ai.ErrMalformedResponse, err)
	}

	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", false, fmt.Errorf("%w: empty completion", ai.ErrMalformedResponse)
	}

	c.logger.Debug("completion response",
		zap.Int("response_length", len(content)),
		zap.String("response_preview", utils.TruncateForLog(content, maxLogLength)),
	)

	return content, false, nil
}
