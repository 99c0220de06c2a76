package assessment

import (
	"errors"
	"testing"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
)

const validAssessmentJSON = `{
	"overall_score": 7.5,
	"recommendation": "yes",
	"phase_scores": [
		{"phase_number": 1, "phase_name": "Warm-up & Background", "technical_accuracy": 7, "problem_solving": 8, "communication": 9, "depth_of_knowledge": 6},
		{"phase_number": 2, "phase_name": "Technical Depth", "technical_accuracy": 8, "problem_solving": 7, "communication": 8, "depth_of_knowledge": 7},
		{"phase_number": 3, "phase_name": "Problem-Solving Scenario", "technical_accuracy": 7, "problem_solving": 9, "communication": 7, "depth_of_knowledge": 8},
		{"phase_number": 4, "phase_name": "Behavioral & Wrap-up", "technical_accuracy": 6, "problem_solving": 7, "communication": 9, "depth_of_knowledge": 7}
	],
	"strengths": {"top_strengths": ["system design"], "demonstrated_skills": ["Go"], "notable_achievements": []},
	"weaknesses": {"areas_for_improvement": ["testing habits"], "missing_skills": [], "concerns": []},
	"summary": "Solid backend candidate.",
	"key_highlights": ["explained consensus tradeoffs"]
}`

func TestParseAssessmentValid(t *testing.T) {
	t.Parallel()

	payload, raw, err := parseAssessment(validAssessmentJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *payload.OverallScore != 7.5 {
		t.Fatalf("expected overall score 7.5, got %v", *payload.OverallScore)
	}
	if payload.Recommendation != "yes" {
		t.Fatalf("unexpected recommendation: %s", payload.Recommendation)
	}
	if len(payload.PhaseScores) != 4 {
		t.Fatalf("expected 4 phase scores, got %d", len(payload.PhaseScores))
	}
	if raw["summary"] != "Solid backend candidate." {
		t.Fatalf("expected raw analysis to be retained, got %v", raw["summary"])
	}
}

func TestParseAssessmentFencedBlock(t *testing.T) {
	t.Parallel()

	payload, _, err := parseAssessment("```json\n" + validAssessmentJSON + "\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Summary != "Solid backend candidate." {
		t.Fatalf("unexpected summary: %q", payload.Summary)
	}
}

func TestParseAssessmentCoercesStringScores(t *testing.T) {
	t.Parallel()

	payload, _, err := parseAssessment(`{
		"overall_score": "8.0",
		"recommendation": "strong_yes",
		"phase_scores": [
			{"phase_number": "1", "phase_name": "Warm-up & Background", "technical_accuracy": "8", "problem_solving": 8, "communication": 8, "depth_of_knowledge": 8}
		],
		"strengths": {},
		"weaknesses": {},
		"summary": "ok",
		"key_highlights": []
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *payload.OverallScore != 8.0 {
		t.Fatalf("expected coerced overall score 8.0, got %v", *payload.OverallScore)
	}
	if *payload.PhaseScores[0].PhaseNumber != 1 {
		t.Fatalf("expected coerced phase number 1, got %v", *payload.PhaseScores[0].PhaseNumber)
	}
}

func TestParseAssessmentFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "not json",
			input: "I think the candidate did fine overall.",
		},
		{
			name:  "missing overall score",
			input: `{"recommendation": "yes", "phase_scores": [{"phase_number": 1, "technical_accuracy": 5, "problem_solving": 5, "communication": 5, "depth_of_knowledge": 5}], "summary": "ok"}`,
		},
		{
			name:  "unknown recommendation",
			input: `{"overall_score": 5, "recommendation": "definitely", "phase_scores": [{"phase_number": 1, "technical_accuracy": 5, "problem_solving": 5, "communication": 5, "depth_of_knowledge": 5}], "summary": "ok"}`,
		},
		{
			name:  "missing sub-score",
			input: `{"overall_score": 5, "recommendation": "maybe", "phase_scores": [{"phase_number": 1, "technical_accuracy": 5, "problem_solving": 5, "communication": 5}], "summary": "ok"}`,
		},
		{
			name:  "empty phase scores",
			input: `{"overall_score": 5, "recommendation": "maybe", "phase_scores": [], "summary": "ok"}`,
		},
		{
			name:  "missing summary",
			input: `{"overall_score": 5, "recommendation": "maybe", "phase_scores": [{"phase_number": 1, "technical_accuracy": 5, "problem_solving": 5, "communication": 5, "depth_of_knowledge": 5}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseAssessment(tt.input); !errors.Is(err, ai.ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
