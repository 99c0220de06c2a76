// Package profile turns raw resume text into a structured candidate profile
// using the text-generation port.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/interview"
	"github.com/abhictrl/Reflexion-Interviewer/internal/utils"
)

//go:embed extract_prompt.md
var extractPromptTemplate string

const (
	// extractionTemperature keeps parsing close to deterministic.
	extractionTemperature = 0.1

	// resumeCharBudget bounds the resume excerpt sent to the model.
	resumeCharBudget = 8000

	extractionSystemPrompt = "You are a precise resume parser that returns only valid JSON."

	maxLogLength = 200
)

// ErrEmptyResume signals that no resume text was provided for analysis.
var ErrEmptyResume = errors.New("resume text is empty")

// Analyzer extracts a CandidateProfile from free-form resume text.
type Analyzer struct {
	completer ai.Completer
	logger    *zap.Logger
}

// NewAnalyzer creates a resume analyzer backed by the given completer.
func NewAnalyzer(completer ai.Completer, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		completer: completer,
		logger:    logger,
	}
}

// Analyze parses the resume text into a structured profile. Unlike report
// generation there is no fallback: a profile the model could not extract is
// an error the caller must see, since every downstream step depends on it.
func (a *Analyzer) Analyze(ctx context.Context, resumeText string) (*interview.CandidateProfile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, ErrEmptyResume
	}

	prompt := strings.ReplaceAll(extractPromptTemplate, "{{RESUME_TEXT}}", truncate(resumeText, resumeCharBudget))

	a.logger.Debug("resume extraction request",
		zap.Int("resume_length", len(resumeText)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, maxLogLength)),
	)

	raw, err := a.completer.Complete(ctx, ai.Request{
		SystemInstruction: extractionSystemPrompt,
		Messages:          []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		Temperature:       extractionTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}

	a.logger.Debug("resume extraction response",
		zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
	)

	profile, err := parseProfile(raw)
	if err != nil {
		return nil, err
	}

	a.logger.Info("candidate profile extracted",
		zap.String("candidate_name", profile.Name),
		zap.Int("skill_count", len(profile.AllSkills())),
	)

	return profile, nil
}

// parseProfile decodes the model output into a profile. Numeric fields are
// decoded weakly because models frequently quote numbers.
func parseProfile(raw string) (*interview.CandidateProfile, error) {
	cleaned := ai.ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: parse profile json: %v", ai.ErrMalformedResponse, err)
	}

	var profile interview.CandidateProfile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &profile,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build profile decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ai.ErrMalformedResponse, err)
	}

	if strings.TrimSpace(profile.Name) == "" {
		return nil, fmt.Errorf("%w: profile is missing the candidate name", ai.ErrMalformedResponse)
	}

	return &profile, nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
