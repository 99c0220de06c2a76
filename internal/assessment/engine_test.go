package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/interview"
)

type stubCompleter struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
	lastReq    ai.Request
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastReq = req
	if len(req.Messages) > 0 {
		s.lastPrompt = req.Messages[len(req.Messages)-1].Content
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testState(history []interview.Message) interview.State {
	return interview.State{
		SessionID:      "session-1",
		Profile:        interview.CandidateProfile{Name: "Jane Doe"},
		JobDescription: "Senior Backend Engineer\nWe build payment infrastructure.",
		CurrentPhase:   4,
		TotalQuestions: 16,
		History:        history,
		StartedAt:      time.Now(),
		Status:         interview.StatusCompleted,
	}
}

func newTestEngine(stub *stubCompleter) *Engine {
	return NewEngine(stub, interview.DefaultCatalog(), zap.NewNop())
}

func TestGenerateParsesAssessment(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{response: "```json\n" + validAssessmentJSON + "\n```"}
	engine := newTestEngine(stub)

	report := engine.Generate(context.Background(), testState(nil), []string{"Go", "PostgreSQL"})

	if report.SessionID != "session-1" || report.CandidateName != "Jane Doe" {
		t.Fatalf("unexpected identity fields: %+v", report)
	}
	if report.OverallScore != 7.5 || report.Recommendation != RecommendYes {
		t.Fatalf("unexpected score fields: %+v", report)
	}
	if report.JobTitle != "Senior Backend Engineer" {
		t.Fatalf("unexpected job title: %q", report.JobTitle)
	}
	if len(report.PhaseScores) != 4 {
		t.Fatalf("expected 4 phase scores, got %d", len(report.PhaseScores))
	}
	if report.RawAnalysis == nil {
		t.Fatal("expected raw analysis to be retained")
	}
	if stub.lastReq.Temperature != 0.3 {
		t.Fatalf("expected low sampling temperature, got %v", stub.lastReq.Temperature)
	}
	if !strings.Contains(stub.lastPrompt, "Go, PostgreSQL") {
		t.Fatal("expected listed skills in the prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Phase 4: Behavioral & Wrap-up") {
		t.Fatal("expected the full phase catalog in the prompt")
	}
}

func TestGenerateParsesAssessmentWithProsePreamble(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{response: "Here is my assessment:\n```json\n" + validAssessmentJSON + "\n```"}
	engine := newTestEngine(stub)

	report := engine.Generate(context.Background(), testState(nil), nil)

	if report.OverallScore != 7.5 || report.Recommendation != RecommendYes {
		t.Fatalf("expected the parsed scores, got fallback-looking report: %+v", report)
	}
}

func TestGenerateRecomputesPhaseAverages(t *testing.T) {
	t.Parallel()

	// The model reports a bogus average; the engine must recompute it.
	stub := &stubCompleter{response: `{
		"overall_score": 6,
		"recommendation": "maybe",
		"phase_scores": [
			{"phase_number": 1, "phase_name": "Warm-up & Background", "technical_accuracy": 4, "problem_solving": 6, "communication": 8, "depth_of_knowledge": 6, "average_score": 9.9}
		],
		"strengths": {},
		"weaknesses": {},
		"summary": "ok",
		"key_highlights": []
	}`}
	engine := newTestEngine(stub)

	report := engine.Generate(context.Background(), testState(nil), nil)

	if got := report.PhaseScores[0].AverageScore; got != 6.0 {
		t.Fatalf("expected recomputed average 6.0, got %v", got)
	}
}

func TestGenerateFallbackOnUnparseableResponse(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{response: "The candidate seemed nice, I give them a 7."}
	engine := newTestEngine(stub)

	report := engine.Generate(context.Background(), testState(nil), nil)

	assertFallback(t, report)
}

func TestGenerateFallbackOnPortFailure(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{err: fmt.Errorf("%w: upstream 503", ai.ErrUnavailable)}
	engine := newTestEngine(stub)

	report := engine.Generate(context.Background(), testState(nil), nil)

	assertFallback(t, report)
}

func TestGenerateFallbackOnMissingRequiredFields(t *testing.T) {
	t.Parallel()

	stub := &stubCompleter{response: `{"recommendation": "yes", "summary": "ok"}`}
	engine := newTestEngine(stub)

	assertFallback(t, engine.Generate(context.Background(), testState(nil), nil))
}

func assertFallback(t *testing.T, report *Report) {
	t.Helper()

	if report == nil {
		t.Fatal("report generation must be total")
	}
	if report.OverallScore != 5.0 || report.Recommendation != RecommendMaybe {
		t.Fatalf("unexpected fallback scores: %+v", report)
	}
	if len(report.PhaseScores) != 4 {
		t.Fatalf("fallback must cover all 4 catalog phases, got %d", len(report.PhaseScores))
	}
	for _, phase := range report.PhaseScores {
		if phase.AverageScore != 5.0 || phase.TechnicalAccuracy != 5.0 {
			t.Fatalf("unexpected fallback phase score: %+v", phase)
		}
	}
	if !strings.Contains(report.Summary, "Manual review recommended") {
		t.Fatalf("unexpected fallback summary: %q", report.Summary)
	}
}

func TestBuildPromptBoundsTranscript(t *testing.T) {
	t.Parallel()

	history := make([]interview.Message, 0, 30)
	for i := 1; i <= 30; i++ {
		role := ai.RoleUser
		if i%2 == 0 {
			role = ai.RoleAssistant
		}
		history = append(history, interview.Message{
			Role:    role,
			Content: fmt.Sprintf("turn-%03d", i),
		})
	}

	engine := newTestEngine(&stubCompleter{})
	prompt := engine.buildPrompt(testState(history), nil)

	if strings.Contains(prompt, "turn-010") {
		t.Fatal("expected messages outside the 20-message window to be dropped")
	}
	if !strings.Contains(prompt, "turn-011") || !strings.Contains(prompt, "turn-030") {
		t.Fatal("expected the last 20 messages in the prompt")
	}
	if !strings.Contains(prompt, "last 20 messages") {
		t.Fatal("expected the message count in the prompt header")
	}
	if !strings.Contains(prompt, "USER: turn-011") {
		t.Fatal("expected ROLE: content transcript rendering")
	}
}

func TestBuildPromptTruncatesLongTranscript(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 800)
	history := make([]interview.Message, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, interview.Message{Role: ai.RoleUser, Content: long})
	}

	engine := newTestEngine(&stubCompleter{})
	prompt := engine.buildPrompt(testState(history), nil)

	start := strings.Index(prompt, "USER: ")
	if start == -1 {
		t.Fatal("expected transcript in prompt")
	}
	transcript := prompt[start:strings.Index(prompt, "Provide your assessment")]
	if len([]rune(transcript)) > transcriptCharBudget+100 {
		t.Fatalf("transcript exceeds character budget: %d runes", len([]rune(transcript)))
	}
}

func TestExtractJobTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "first line with keyword",
			input:  "Senior Backend Engineer\nWe are a fintech...",
			expect: "Senior Backend Engineer",
		},
		{
			name:   "no keyword falls back",
			input:  "We are hiring!\nJoin our team",
			expect: defaultJobTitle,
		},
		{
			name:   "too long falls back",
			input:  strings.Repeat("engineer ", 20) + "\nrest",
			expect: defaultJobTitle,
		},
		{
			name:   "empty falls back",
			input:  "",
			expect: defaultJobTitle,
		},
		{
			name:   "case insensitive keyword",
			input:  "DATA SCIENTIST (Remote)",
			expect: "DATA SCIENTIST (Remote)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJobTitle(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
