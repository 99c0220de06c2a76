package assessment

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
)

// assessmentPayload mirrors the JSON shape requested from the model. Pointer
// fields distinguish missing required values from legitimate zeros.
type assessmentPayload struct {
	OverallScore   *float64            `mapstructure:"overall_score"`
	Recommendation string              `mapstructure:"recommendation"`
	PhaseScores    []phaseScorePayload `mapstructure:"phase_scores"`
	Strengths      strengthsPayload    `mapstructure:"strengths"`
	Weaknesses     weaknessesPayload   `mapstructure:"weaknesses"`
	Summary        string              `mapstructure:"summary"`
	KeyHighlights  []string            `mapstructure:"key_highlights"`
}

type phaseScorePayload struct {
	PhaseNumber       *int     `mapstructure:"phase_number"`
	PhaseName         string   `mapstructure:"phase_name"`
	TechnicalAccuracy *float64 `mapstructure:"technical_accuracy"`
	ProblemSolving    *float64 `mapstructure:"problem_solving"`
	Communication     *float64 `mapstructure:"communication"`
	DepthOfKnowledge  *float64 `mapstructure:"depth_of_knowledge"`
}

type strengthsPayload struct {
	TopStrengths        []string `mapstructure:"top_strengths"`
	DemonstratedSkills  []string `mapstructure:"demonstrated_skills"`
	NotableAchievements []string `mapstructure:"notable_achievements"`
}

type weaknessesPayload struct {
	AreasForImprovement []string `mapstructure:"areas_for_improvement"`
	MissingSkills       []string `mapstructure:"missing_skills"`
	Concerns            []string `mapstructure:"concerns"`
}

// parseAssessment extracts the JSON object from the raw model output and
// decodes it into a validated payload. The raw map is returned alongside the
// typed payload for auditability.
func parseAssessment(raw string) (*assessmentPayload, map[string]any, error) {
	cleaned := ai.ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, nil, fmt.Errorf("%w: parse assessment json: %v", ai.ErrMalformedResponse, err)
	}

	var payload assessmentPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &payload,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build assessment decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, nil, fmt.Errorf("%w: decode assessment: %v", ai.ErrMalformedResponse, err)
	}

	if err := validatePayload(&payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}

	return &payload, data, nil
}

func validatePayload(payload *assessmentPayload) error {
	if payload.OverallScore == nil {
		return fmt.Errorf("overall_score is missing")
	}
	if !Recommendation(payload.Recommendation).valid() {
		return fmt.Errorf("unknown recommendation %q", payload.Recommendation)
	}
	if payload.Summary == "" {
		return fmt.Errorf("summary is missing")
	}
	if len(payload.PhaseScores) == 0 {
		return fmt.Errorf("phase_scores are missing")
	}

	for i, phase := range payload.PhaseScores {
		if phase.PhaseNumber == nil {
			return fmt.Errorf("phase_scores[%d]: phase_number is missing", i)
		}
		if phase.TechnicalAccuracy == nil || phase.ProblemSolving == nil ||
			phase.Communication == nil || phase.DepthOfKnowledge == nil {
			return fmt.Errorf("phase_scores[%d]: incomplete sub-scores", i)
		}
	}

	return nil
}
