package assessment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/interview"
	"github.com/abhictrl/Reflexion-Interviewer/internal/utils"
)

//go:embed assessment_prompt.md
var assessmentPromptTemplate string

const (
	// assessmentTemperature favors deterministic scoring over creativity.
	assessmentTemperature = 0.3

	// Request-size bounds: the transcript excerpt and job description prefix
	// keep every assessment request predictable regardless of session length.
	transcriptWindow       = 20
	transcriptCharBudget   = 3000
	jobDescriptionPrefix   = 500
	assessmentSystemPrompt = "You are an expert technical interviewer and hiring manager."

	defaultJobTitle = "Software Engineer"

	maxLogLength = 200
)

var jobTitleKeywords = []string{"engineer", "developer", "software", "architect", "scientist"}

// Engine synthesizes a structured interview report from a session snapshot.
// Report generation is total: when the model's critique cannot be parsed, a
// neutral fallback report is returned instead of an error.
type Engine struct {
	completer ai.Completer
	catalog   *interview.Catalog
	logger    *zap.Logger
}

// NewEngine creates a report engine sharing the read-only phase catalog with
// the orchestrators.
func NewEngine(completer ai.Completer, catalog *interview.Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		completer: completer,
		catalog:   catalog,
		logger:    logger,
	}
}

// Generate produces the assessment report for the given session snapshot.
// It never fails: any error between prompt construction and payload
// validation yields the neutral fallback report.
func (e *Engine) Generate(ctx context.Context, state interview.State, skills []string) *Report {
	report, err := e.generate(ctx, state, skills)
	if err != nil {
		e.logger.Warn("falling back to neutral assessment report",
			zap.String("session_id", state.SessionID),
			zap.Error(err),
		)
		return e.fallbackReport(state)
	}

	e.logger.Info("assessment report generated",
		zap.String("session_id", state.SessionID),
		zap.Float64("overall_score", report.OverallScore),
		zap.String("recommendation", string(report.Recommendation)),
	)

	return report
}

func (e *Engine) generate(ctx context.Context, state interview.State, skills []string) (*Report, error) {
	prompt := e.buildPrompt(state, skills)

	e.logger.Debug("assessment generation request",
		zap.String("session_id", state.SessionID),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, maxLogLength)),
	)

	raw, err := e.completer.Complete(ctx, ai.Request{
		SystemInstruction: assessmentSystemPrompt,
		Messages:          []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		Temperature:       assessmentTemperature,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("assessment generation response",
		zap.String("session_id", state.SessionID),
		zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
	)

	payload, rawData, err := parseAssessment(raw)
	if err != nil {
		return nil, err
	}

	phaseScores := make([]PhaseScore, 0, len(payload.PhaseScores))
	for _, phase := range payload.PhaseScores {
		score := PhaseScore{
			PhaseNumber:       *phase.PhaseNumber,
			PhaseName:         phase.PhaseName,
			TechnicalAccuracy: *phase.TechnicalAccuracy,
			ProblemSolving:    *phase.ProblemSolving,
			Communication:     *phase.Communication,
			DepthOfKnowledge:  *phase.DepthOfKnowledge,
		}
		// The average is never trusted from the model output.
		score.AverageScore = (score.TechnicalAccuracy + score.ProblemSolving +
			score.Communication + score.DepthOfKnowledge) / 4.0
		phaseScores = append(phaseScores, score)
	}

	return &Report{
		SessionID:      state.SessionID,
		CandidateName:  state.Profile.Name,
		JobTitle:       extractJobTitle(state.JobDescription),
		OverallScore:   *payload.OverallScore,
		Recommendation: Recommendation(payload.Recommendation),
		PhaseScores:    phaseScores,
		Strengths: Strengths{
			TopStrengths:        payload.Strengths.TopStrengths,
			DemonstratedSkills:  payload.Strengths.DemonstratedSkills,
			NotableAchievements: payload.Strengths.NotableAchievements,
		},
		Weaknesses: Weaknesses{
			AreasForImprovement: payload.Weaknesses.AreasForImprovement,
			MissingSkills:       payload.Weaknesses.MissingSkills,
			Concerns:            payload.Weaknesses.Concerns,
		},
		Summary:       payload.Summary,
		KeyHighlights: payload.KeyHighlights,
		GeneratedAt:   time.Now(),
		RawAnalysis:   rawData,
	}, nil
}

func (e *Engine) buildPrompt(state interview.State, skills []string) string {
	messages := state.History
	if len(messages) > transcriptWindow {
		messages = messages[len(messages)-transcriptWindow:]
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content))
	}
	transcript := truncate(strings.Join(lines, "\n"), transcriptCharBudget)

	breakdown := make([]string, 0, e.catalog.Len())
	for _, phase := range e.catalog.Phases() {
		breakdown = append(breakdown, fmt.Sprintf("- Phase %d: %s - %s", phase.Number, phase.Name, phase.Description))
	}

	listedSkills := "none listed"
	if len(skills) > 0 {
		listedSkills = strings.Join(skills, ", ")
	}

	prompt := strings.ReplaceAll(assessmentPromptTemplate, "{{JOB_DESCRIPTION}}", truncate(state.JobDescription, jobDescriptionPrefix))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_NAME}}", state.Profile.Name)
	prompt = strings.ReplaceAll(prompt, "{{LISTED_SKILLS}}", listedSkills)
	prompt = strings.ReplaceAll(prompt, "{{PHASE_BREAKDOWN}}", strings.Join(breakdown, "\n"))
	prompt = strings.ReplaceAll(prompt, "{{MESSAGE_COUNT}}", strconv.Itoa(len(messages)))
	prompt = strings.ReplaceAll(prompt, "{{TRANSCRIPT}}", transcript)

	return prompt
}

// fallbackReport is the deterministic neutral report used when AI scoring
// fails. It covers all catalog phases regardless of session progress and
// must never itself fail.
func (e *Engine) fallbackReport(state interview.State) *Report {
	phaseScores := make([]PhaseScore, 0, e.catalog.Len())
	for _, phase := range e.catalog.Phases() {
		phaseScores = append(phaseScores, PhaseScore{
			PhaseNumber:       phase.Number,
			PhaseName:         phase.Name,
			TechnicalAccuracy: 5.0,
			ProblemSolving:    5.0,
			Communication:     5.0,
			DepthOfKnowledge:  5.0,
			AverageScore:      5.0,
		})
	}

	return &Report{
		SessionID:      state.SessionID,
		CandidateName:  state.Profile.Name,
		JobTitle:       extractJobTitle(state.JobDescription),
		OverallScore:   5.0,
		Recommendation: RecommendMaybe,
		PhaseScores:    phaseScores,
		Strengths: Strengths{
			TopStrengths:        []string{"Completed interview successfully"},
			DemonstratedSkills:  []string{},
			NotableAchievements: []string{},
		},
		Weaknesses: Weaknesses{
			AreasForImprovement: []string{"Assessment incomplete"},
			MissingSkills:       []string{},
			Concerns:            []string{"AI assessment generation failed"},
		},
		Summary:       "Assessment report generation encountered an error. Manual review recommended.",
		KeyHighlights: []string{"Interview session completed"},
		GeneratedAt:   time.Now(),
	}
}

// extractJobTitle derives the job title from the description's first line
// when it looks like a role name, falling back to a fixed default.
func extractJobTitle(jobDescription string) string {
	lines := strings.Split(jobDescription, "\n")
	if len(lines) == 0 {
		return defaultJobTitle
	}

	first := strings.TrimSpace(lines[0])
	if first == "" || len(first) >= 100 {
		return defaultJobTitle
	}

	lower := strings.ToLower(first)
	for _, keyword := range jobTitleKeywords {
		if strings.Contains(lower, keyword) {
			return first
		}
	}

	return defaultJobTitle
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
