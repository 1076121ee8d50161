package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/tandemstudy/tandem-backend/internal/domain"
	"github.com/tandemstudy/tandem-backend/internal/http/response"
	"github.com/tandemstudy/tandem-backend/internal/services"
)

type StudySessionHandler struct {
	sessions services.StudySessionService
	grading  services.GradingService
	now      func() time.Time
}

func NewStudySessionHandler(sessions services.StudySessionService, grading services.GradingService) *StudySessionHandler {
	return &StudySessionHandler{
		sessions: sessions,
		grading:  grading,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// POST /api/sources/:id/study-session
func (h *StudySessionHandler) StartOrResume(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_source_id", err)
		return
	}
	session, err := h.sessions.StartOrResume(c.Request.Context(), sourceID, h.now())
	if err != nil {
		response.RespondServiceError(c, "start_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// GET /api/study-sessions/:id
func (h *StudySessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, "session_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

type gradeRequest struct {
	CardID            uuid.UUID  `json:"card_id" binding:"required"`
	Rating            int        `json:"rating" binding:"required"`
	LearningPartnerID *uuid.UUID `json:"learning_partner_id"`
}

// POST /api/study-sessions/:id/grade
func (h *StudySessionHandler) Grade(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_grade_request", err)
		return
	}

	outcome, err := h.grading.Grade(
		c.Request.Context(),
		sessionID,
		req.CardID,
		types.Rating(req.Rating),
		req.LearningPartnerID,
		h.now(),
	)
	if err != nil {
		response.RespondServiceError(c, "grade_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"outcome":          outcome,
		"session_complete": outcome.SessionComplete(),
	})
}
