package interview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/utils"
)

const (
	// historyWindow bounds how many transcript entries accompany each
	// generation request, keeping request size flat as the session grows.
	historyWindow = 10
	// interviewTemperature leans toward natural variety over determinism.
	interviewTemperature = 0.8

	maxLogLength = 200

	closingMessage = `Thank you for taking the time to interview with us today! You've provided great insights into your technical background and problem-solving approach.

The interview process is now complete. We'll review your responses and be in touch soon. Do you have any questions for me about the position or the team?`
)

var (
	// ErrSessionCompleted is returned by Process once the interview reached
	// its terminal state. No call leaves the completed state.
	ErrSessionCompleted = errors.New("interview session already completed")

	// ErrEmptyMessage rejects candidate input with no content before it
	// touches the transcript.
	ErrEmptyMessage = errors.New("candidate message must not be empty")

	// ErrMissingJobDescription rejects session creation without a job description.
	ErrMissingJobDescription = errors.New("job description is required")

	// ErrMissingCandidateName rejects profiles without a candidate name.
	ErrMissingCandidateName = errors.New("candidate name is required")
)

// Orchestrator owns one interview session: it tracks phase progression,
// assembles bounded generation requests, and appends to the transcript.
// All exported methods are safe for concurrent use; calls against the same
// session are serialized by an internal lock.
type Orchestrator struct {
	catalog   *Catalog
	completer ai.Completer
	logger    *zap.Logger
	now       func() time.Time

	mu           sync.Mutex
	state        State
	systemPrompt string
}

// NewOrchestrator creates a fresh active session in phase 1. It performs no
// network call.
func NewOrchestrator(catalog *Catalog, completer ai.Completer, logger *zap.Logger, profile CandidateProfile, jobDescription string) (*Orchestrator, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, ErrMissingJobDescription
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, ErrMissingCandidateName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		catalog:   catalog,
		completer: completer,
		now:       time.Now,
		state: State{
			SessionID:      uuid.NewString(),
			Profile:        profile,
			JobDescription: jobDescription,
			CurrentPhase:   1,
			Status:         StatusActive,
		},
	}
	o.state.StartedAt = o.now()
	o.logger = logger.With(zap.String("session_id", o.state.SessionID))
	o.systemPrompt = buildSystemPrompt(catalog, profile, jobDescription, o.state.CurrentPhase)

	o.logger.Info("interview session created", zap.String("candidate", profile.Name))

	return o, nil
}

// ID returns the session identifier, the sole external handle for the session.
func (o *Orchestrator) ID() string {
	return o.state.SessionID
}

// GenerateOpening asks the backend for the interviewer's opening message,
// seeded with a scripted assistant-voice template. The opening is recorded in
// the transcript but does not count toward any phase quota.
func (o *Orchestrator) GenerateOpening(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	seed := buildOpeningSeed(o.state.Profile)

	opening, err := o.completer.Complete(ctx, ai.Request{
		SystemInstruction: o.systemPrompt,
		Messages:          []ai.Message{{Role: ai.RoleAssistant, Content: seed}},
		Temperature:       interviewTemperature,
	})
	if err != nil {
		return "", err
	}

	o.append(ai.RoleAssistant, opening)

	return opening, nil
}

// Process records the candidate's message, advances phase when the current
// quota is exhausted, and returns the interviewer's next message. When the
// final phase quota is exhausted it returns the fixed closing message and the
// session becomes terminal. A backend failure is propagated untouched; the
// candidate's message stays recorded, so retrying Process is safe.
func (o *Orchestrator) Process(ctx context.Context, candidateText string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Status == StatusCompleted {
		return "", ErrSessionCompleted
	}

	if strings.TrimSpace(candidateText) == "" {
		return "", ErrEmptyMessage
	}

	o.append(ai.RoleUser, candidateText)

	def, err := o.catalog.DefinitionFor(o.state.CurrentPhase)
	if err != nil {
		return "", err
	}

	// Advancement is checked before generating, so the message produced by a
	// boundary-crossing call already uses the next phase's instruction.
	if o.state.QuestionsAskedInPhase >= def.MaxQuestions {
		if o.state.CurrentPhase < o.catalog.Len() {
			o.state.CurrentPhase++
			o.state.QuestionsAskedInPhase = 0
			o.systemPrompt = buildSystemPrompt(o.catalog, o.state.Profile, o.state.JobDescription, o.state.CurrentPhase)
			o.logger.Info("advancing interview phase", zap.Int("phase", o.state.CurrentPhase))
		} else {
			o.state.Status = StatusCompleted
			o.append(ai.RoleAssistant, closingMessage)
			o.logger.Info("interview completed", zap.Int("total_questions", o.state.TotalQuestions))
			return closingMessage, nil
		}
	}

	reply, err := o.generateNext(ctx)
	if err != nil {
		return "", err
	}

	if reply != "" {
		o.state.QuestionsAskedInPhase++
		o.state.TotalQuestions++
		o.append(ai.RoleAssistant, reply)
	}

	return reply, nil
}

// State returns a deep-copied snapshot of the session state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

func (o *Orchestrator) generateNext(ctx context.Context) (string, error) {
	window := o.state.History
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	messages := make([]ai.Message, 0, len(window))
	for _, msg := range window {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}

	o.logger.Debug("interview generation request",
		zap.Int("phase", o.state.CurrentPhase),
		zap.Int("window", len(messages)),
		zap.String("system_prompt_preview", utils.TruncateForLog(o.systemPrompt, maxLogLength)),
	)

	return o.completer.Complete(ctx, ai.Request{
		SystemInstruction: o.systemPrompt,
		Messages:          messages,
		Temperature:       interviewTemperature,
	})
}

func (o *Orchestrator) append(role, content string) {
	o.state.History = append(o.state.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: o.now(),
	})
}
