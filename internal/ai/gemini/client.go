package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/logger"
	"github.com/abhictrl/Reflexion-Interviewer/internal/utils"
)

const (
	defaultModel      = "gemini-2.5-pro"
	defaultMaxRetries = 3

	maxLogLength = 200
)

// Config holds the Gemini connection settings.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
}

// generator is the narrow slice of the genai client the completer needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client adapts the Google GenAI SDK to the Completer port.
type Client struct {
	models      generator
	model       string
	maxRetries  int
	backoffBase time.Duration
	logger      *zap.Logger
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Client{
		models:      genaiClient.Models,
		model:       model,
		maxRetries:  maxRetries,
		backoffBase: time.Second,
		logger:      logger.WithCommonFields(log, "gemini", model),
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the conversation to Gemini and returns the textual
// completion, retrying transient API errors with exponential backoff.
func (c *Client) Complete(ctx context.Context, req ai.Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, c.backoffBase<<(attempt-1)); err != nil {
				return "", err
			}
		}

		resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				return "", fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
			}
			c.logger.Debug("retrying gemini request",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		text := extractText(resp)
		if text == "" {
			return "", fmt.Errorf("%w: gemini returned empty response", ai.ErrMalformedResponse)
		}

		c.logger.Debug("gemini completion response",
			zap.String("response_preview", utils.TruncateForLog(text, maxLogLength)),
		)

		return text, nil
	}

	return "", fmt.Errorf("%w: after %d attempts: %v", ai.ErrUnavailable, c.maxRetries, lastErr)
}

func isRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		// Network-level failures carry no status code; retry them.
		return true
	}
	return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
}

func extractText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}
