package assessment

import "time"

// Recommendation is the categorical hiring recommendation.
type Recommendation string

const (
	RecommendStrongYes Recommendation = "strong_yes"
	RecommendYes       Recommendation = "yes"
	RecommendMaybe     Recommendation = "maybe"
	RecommendNo        Recommendation = "no"
	RecommendStrongNo  Recommendation = "strong_no"
)

func (r Recommendation) valid() bool {
	switch r {
	case RecommendStrongYes, RecommendYes, RecommendMaybe, RecommendNo, RecommendStrongNo:
		return true
	}
	return false
}

// PhaseScore is the per-phase score breakdown. AverageScore is always
// recomputed server-side from the four sub-scores.
type PhaseScore struct {
	PhaseNumber       int     `json:"phase_number"`
	PhaseName         string  `json:"phase_name"`
	TechnicalAccuracy float64 `json:"technical_accuracy"`
	ProblemSolving    float64 `json:"problem_solving"`
	Communication     float64 `json:"communication"`
	DepthOfKnowledge  float64 `json:"depth_of_knowledge"`
	AverageScore      float64 `json:"average_score"`
}

// Strengths groups the candidate's identified strengths.
type Strengths struct {
	TopStrengths        []string `json:"top_strengths"`
	DemonstratedSkills  []string `json:"demonstrated_skills"`
	NotableAchievements []string `json:"notable_achievements"`
}

// Weaknesses groups the candidate's identified weaknesses.
type Weaknesses struct {
	AreasForImprovement []string `json:"areas_for_improvement"`
	MissingSkills       []string `json:"missing_skills"`
	Concerns            []string `json:"concerns"`
}

// Report is the terminal assessment artifact produced from a session.
type Report struct {
	SessionID      string         `json:"session_id"`
	CandidateName  string         `json:"candidate_name"`
	JobTitle       string         `json:"job_title"`
	OverallScore   float64        `json:"overall_score"`
	Recommendation Recommendation `json:"recommendation"`
	PhaseScores    []PhaseScore   `json:"phase_scores"`
	Strengths      Strengths      `json:"strengths"`
	Weaknesses     Weaknesses     `json:"weaknesses"`
	Summary        string         `json:"summary"`
	KeyHighlights  []string       `json:"key_highlights"`
	GeneratedAt    time.Time      `json:"generated_at"`
	RawAnalysis    map[string]any `json:"raw_analysis,omitempty"`
}
