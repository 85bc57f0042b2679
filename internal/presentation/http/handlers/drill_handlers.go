package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/application/services"
	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
)

// DrillHandlers drives the drill-creation wizard over HTTP.
type DrillHandlers struct {
	wizard      *services.WizardService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDrillHandlers creates drill wizard handlers with injected dependencies
func NewDrillHandlers(wizard *services.WizardService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DrillHandlers {
	return &DrillHandlers{
		wizard:      wizard,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetState handles GET /api/v1/drill/state
func (h *DrillHandlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizard.State())
}

// PostTarget handles POST /api/v1/drill/target
func (h *DrillHandlers) PostTarget(c *gin.Context) {
	var profile entities.TargetProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		h.logger.Wizard().Error("Target profile JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	state, err := h.wizard.SubmitTarget(profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PostGenerate handles POST /api/v1/drill/generate - draft generation,
// optionally steered by a suggestion on regeneration.
func (h *DrillHandlers) PostGenerate(c *gin.Context) {
	var req struct {
		Suggestion string `json:"suggestion"`
	}
	// Body is optional for the first generation.
	_ = c.ShouldBindJSON(&req)

	state, err := h.wizard.Generate(c.Request.Context(), req.Suggestion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PostAccept handles POST /api/v1/drill/accept
func (h *DrillHandlers) PostAccept(c *gin.Context) {
	state, err := h.wizard.AcceptDraft()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// PostBack handles POST /api/v1/drill/back
func (h *DrillHandlers) PostBack(c *gin.Context) {
	state, err := h.wizard.GoBack()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type sendRequest struct {
	Channel string `json:"channel" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// PostSend handles POST /api/v1/drill/send
func (h *DrillHandlers) PostSend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Delivery().Error("Send request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.wizard.Send(c.Request.Context(), req.Channel, req.Contact, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PostSchedule handles POST /api/v1/drill/schedule
func (h *DrillHandlers) PostSchedule(c *gin.Context) {
	var req struct {
		sendRequest
		At time.Time `json:"at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Delivery().Error("Schedule request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	state, err := h.wizard.ScheduleSend(req.Channel, req.Contact, req.Name, req.At)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// DeleteSchedule handles DELETE /api/v1/drill/schedule
func (h *DrillHandlers) DeleteSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizard.CancelSchedule())
}

// PostReset handles POST /api/v1/drill/reset
func (h *DrillHandlers) PostReset(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizard.Reset())
}
