package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/application/services"
	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
)

// SettingsHandlers serves the operator settings endpoints.
type SettingsHandlers struct {
	settingsService *services.SettingsService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewSettingsHandlers creates settings handlers with injected dependencies
func NewSettingsHandlers(settingsService *services.SettingsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SettingsHandlers {
	return &SettingsHandlers{
		settingsService: settingsService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetSettings handles GET /api/v1/settings
func (h *SettingsHandlers) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings handles PUT /api/v1/settings - deep-merges the partial payload
// into the stored settings.
func (h *SettingsHandlers) PutSettings(c *gin.Context) {
	marker := h.perfTracker.StartOperation("put_settings_request")
	defer marker.Complete()

	var partial entities.UserSettings
	if err := c.ShouldBindJSON(&partial); err != nil {
		h.logger.Storage().Error("Settings request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	merged, err := h.settingsService.Save(partial)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, merged)
}

// GetSettingsStatus handles GET /api/v1/settings/status - integration
// readiness without credential values.
func (h *SettingsHandlers) GetSettingsStatus(c *gin.Context) {
	status, err := h.settingsService.Status()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
