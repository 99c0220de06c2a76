package interview

import "time"

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	// StatusPaused is reserved; the orchestrator never enters it on its own.
	StatusPaused Status = "paused"
)

// Message is a single transcript entry. The transcript is append-only; a
// recorded message is never edited or removed.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the full mutable record of one interview session. Snapshots
// handed out by the orchestrator are deep copies and safe to retain.
type State struct {
	SessionID             string           `json:"session_id"`
	Profile               CandidateProfile `json:"candidate_profile"`
	JobDescription        string           `json:"job_description"`
	CurrentPhase          int              `json:"current_phase"`
	QuestionsAskedInPhase int              `json:"questions_asked_in_phase"`
	TotalQuestions        int              `json:"total_questions"`
	History               []Message        `json:"conversation_history"`
	StartedAt             time.Time        `json:"started_at"`
	Status                Status           `json:"status"`
}

// clone returns a deep copy of the state. The profile's nested slices are
// immutable after creation, so copying the history slice is sufficient to
// keep callers from mutating orchestrator internals.
func (s State) clone() State {
	out := s
	out.History = make([]Message, len(s.History))
	copy(out.History, s.History)
	return out
}
