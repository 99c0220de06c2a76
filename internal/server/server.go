// Package server exposes the interview lifecycle over HTTP.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhictrl/Reflexion-Interviewer/internal/ai"
	"github.com/abhictrl/Reflexion-Interviewer/internal/assessment"
	"github.com/abhictrl/Reflexion-Interviewer/internal/interview"
	"github.com/abhictrl/Reflexion-Interviewer/internal/profile"
)

// Server wires the session registry, resume analyzer and assessment engine
// into a gin router.
type Server struct {
	registry *interview.Registry
	analyzer *profile.Analyzer
	engine   *assessment.Engine
	logger   *zap.Logger
}

// New creates an HTTP server front end over the given collaborators.
func New(registry *interview.Registry, analyzer *profile.Analyzer, engine *assessment.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry: registry,
		analyzer: analyzer,
		engine:   engine,
		logger:   logger,
	}
}

// Router builds the gin engine with all interview routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), cors())

	router.GET("/", s.apiInfo)
	router.GET("/health", s.health)
	router.GET("/debug/sessions", s.debugSessions)

	api := router.Group("/api/interview")
	api.POST("/start", s.startInterview)
	api.POST("/message", s.processMessage)
	api.GET("/status/:id", s.sessionStatus)
	api.GET("/report/:id", s.sessionReport)

	return router
}

// errorResponse is the uniform error body for every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

type startRequest struct {
	Profile        *interview.CandidateProfile `json:"profile"`
	ResumeText     string                      `json:"resume_text"`
	JobDescription string                      `json:"job_description" binding:"required"`
}

type startResponse struct {
	SessionID string                      `json:"session_id"`
	Profile   *interview.CandidateProfile `json:"profile"`
	Opening   string                      `json:"opening_message"`
	Phase     int                         `json:"current_phase"`
}

// startInterview creates a session from either a pre-built profile or raw
// resume text, then generates the interviewer's opening message.
func (s *Server) startInterview(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	candidate := req.Profile
	if candidate == nil {
		extracted, err := s.analyzer.Analyze(c.Request.Context(), req.ResumeText)
		if err != nil {
			s.logger.Warn("resume analysis failed", zap.Error(err))
			s.renderError(c, err)
			return
		}
		candidate = extracted
	}

	orchestrator, err := s.registry.Create(*candidate, req.JobDescription)
	if err != nil {
		s.renderError(c, err)
		return
	}

	opening, err := orchestrator.GenerateOpening(c.Request.Context())
	if err != nil {
		s.logger.Error("opening generation failed",
			zap.String("session_id", orchestrator.ID()),
			zap.Error(err),
		)
		s.renderError(c, err)
		return
	}

	state := orchestrator.State()
	c.JSON(http.StatusOK, startResponse{
		SessionID: state.SessionID,
		Profile:   &state.Profile,
		Opening:   opening,
		Phase:     state.CurrentPhase,
	})
}

type messageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message"`
}

type messageResponse struct {
	SessionID string           `json:"session_id"`
	Reply     string           `json:"reply"`
	Phase     int              `json:"current_phase"`
	Status    interview.Status `json:"status"`
}

func (s *Server) processMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	orchestrator, err := s.registry.Get(req.SessionID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	reply, err := orchestrator.Process(c.Request.Context(), req.Message)
	if err != nil {
		s.renderError(c, err)
		return
	}

	state := orchestrator.State()
	c.JSON(http.StatusOK, messageResponse{
		SessionID: state.SessionID,
		Reply:     reply,
		Phase:     state.CurrentPhase,
		Status:    state.Status,
	})
}

type statusResponse struct {
	SessionID      string           `json:"session_id"`
	CandidateName  string           `json:"candidate_name"`
	Status         interview.Status `json:"status"`
	CurrentPhase   int              `json:"current_phase"`
	TotalQuestions int              `json:"total_questions"`
	MessageCount   int              `json:"message_count"`
}

func (s *Server) sessionStatus(c *gin.Context) {
	orchestrator, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	state := orchestrator.State()
	c.JSON(http.StatusOK, statusResponse{
		SessionID:      state.SessionID,
		CandidateName:  state.Profile.Name,
		Status:         state.Status,
		CurrentPhase:   state.CurrentPhase,
		TotalQuestions: state.TotalQuestions,
		MessageCount:   len(state.History),
	})
}

// sessionReport synthesizes the assessment report for a session. Generation
// is total, so this endpoint only fails on unknown session ids.
func (s *Server) sessionReport(c *gin.Context) {
	orchestrator, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	state := orchestrator.State()

	// For report scoring only the core technical skills matter.
	skills := append([]string{}, state.Profile.Skills.Languages...)
	skills = append(skills, state.Profile.Skills.Frameworks...)

	report := s.engine.Generate(c.Request.Context(), state, skills)
	c.JSON(http.StatusOK, report)
}

func (s *Server) apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Reflexion Interviewer API",
		"health":  "/health",
	})
}

// debugSessions lists the live session ids. Intended for local debugging
// only; it exposes no transcript content.
func (s *Server) debugSessions(c *gin.Context) {
	ids := s.registry.SessionIDs()
	c.JSON(http.StatusOK, gin.H{
		"session_count": len(ids),
		"session_ids":   ids,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"active_sessions": s.registry.Len(),
	})
}

// renderError maps domain errors onto HTTP statuses.
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interview.ErrSessionCompleted):
		status = http.StatusConflict
	case errors.Is(err, interview.ErrEmptyMessage),
		errors.Is(err, interview.ErrMissingJobDescription),
		errors.Is(err, interview.ErrMissingCandidateName),
		errors.Is(err, profile.ErrEmptyResume):
		status = http.StatusBadRequest
	case errors.Is(err, ai.ErrUnavailable),
		errors.Is(err, ai.ErrMalformedResponse):
		status = http.StatusBadGateway
	}

	c.JSON(status, errorResponse{Error: err.Error()})
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
