package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tandemstudy/tandem-backend/internal/http/response"
	"github.com/tandemstudy/tandem-backend/internal/services"
)

type LearningPartnerHandler struct {
	partners services.LearningPartnerService
}

func NewLearningPartnerHandler(partners services.LearningPartnerService) *LearningPartnerHandler {
	return &LearningPartnerHandler{partners: partners}
}

type createPartnerRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/learning-partners
func (h *LearningPartnerHandler) Create(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_partner_request", err)
		return
	}
	partner, err := h.partners.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondServiceError(c, "create_partner_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"learning_partner": partner})
}

// GET /api/learning-partners
func (h *LearningPartnerHandler) List(c *gin.Context) {
	partners, err := h.partners.ListEnabled(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "list_partners_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"learning_partners": partners})
}

type setPartnerEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PATCH /api/learning-partners/:id
func (h *LearningPartnerHandler) SetEnabled(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_partner_id", err)
		return
	}
	var req setPartnerEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_partner_request", err)
		return
	}
	partner, err := h.partners.SetEnabled(c.Request.Context(), partnerID, *req.Enabled)
	if err != nil {
		response.RespondServiceError(c, "update_partner_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"learning_partner": partner})
}
