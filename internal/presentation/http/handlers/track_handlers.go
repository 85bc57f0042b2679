package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/application/services"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
)

// transparentGIF is a 1x1 transparent pixel served for open tracking.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackHandlers records open and click callbacks from delivered drills. These
// endpoints are hit by mail clients and target browsers, so they always
// respond usefully even for unknown ids.
type TrackHandlers struct {
	analyticsService *services.AnalyticsService
	logger           *logging.ChanneledLogger
}

// NewTrackHandlers creates tracking handlers with injected dependencies
func NewTrackHandlers(analyticsService *services.AnalyticsService, logger *logging.ChanneledLogger) *TrackHandlers {
	return &TrackHandlers{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// GetTrack handles GET /api/track?id=&type=open|click[&redirect=]
func (h *TrackHandlers) GetTrack(c *gin.Context) {
	drillID := c.Query("id")
	eventType := c.Query("type")
	ip := c.ClientIP()
	userAgent := c.Request.UserAgent()

	switch eventType {
	case "open":
		if _, err := h.analyticsService.TrackOpen(drillID, ip, userAgent); err != nil {
			h.logger.Track().Warn("open for unknown drill", "drillId", drillID)
		}
		c.Data(http.StatusOK, "image/gif", transparentGIF)

	case "click":
		if _, err := h.analyticsService.TrackClick(drillID, ip, userAgent); err != nil {
			h.logger.Track().Warn("click for unknown drill", "drillId", drillID)
		}
		redirect := c.Query("redirect")
		if redirect == "" {
			c.Status(http.StatusNoContent)
			return
		}
		c.Redirect(http.StatusFound, redirect)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be open or click"})
	}
}
