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

// SourceStudyHandler serves the per-source study surfaces that are not the
// session itself: due-count badges and the solo/partner settings.
type SourceStudyHandler struct {
	dueCounts services.DueCountsService
	settings  services.StudySettingsService
	now       func() time.Time
}

func NewSourceStudyHandler(dueCounts services.DueCountsService, settings services.StudySettingsService) *SourceStudyHandler {
	return &SourceStudyHandler{
		dueCounts: dueCounts,
		settings:  settings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GET /api/sources/:id/due-counts
func (h *SourceStudyHandler) GetDueCounts(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_source_id", err)
		return
	}
	counts, err := h.dueCounts.Get(c.Request.Context(), sourceID, h.now())
	if err != nil {
		response.RespondServiceError(c, "due_counts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"due_counts": counts})
}

// GET /api/sources/:id/study-settings
func (h *SourceStudyHandler) GetStudySettings(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_source_id", err)
		return
	}
	settings, err := h.settings.Get(c.Request.Context(), sourceID)
	if err != nil {
		response.RespondServiceError(c, "get_study_settings_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"study_settings": settings})
}

type updateStudySettingsRequest struct {
	StudyMode string `json:"study_mode" binding:"required"`
}

// PUT /api/sources/:id/study-settings
func (h *SourceStudyHandler) UpdateStudySettings(c *gin.Context) {
	sourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_source_id", err)
		return
	}
	var req updateStudySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_settings_request", err)
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), sourceID, types.StudyMode(req.StudyMode))
	if err != nil {
		response.RespondServiceError(c, "update_study_settings_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"study_settings": settings})
}
