package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mockdrill/mockdrill-go/internal/application/services"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/messaging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
)

// AnalyticsHandlers serves the dashboard analytics endpoints and the live
// tracking feed.
type AnalyticsHandlers struct {
	analyticsService *services.AnalyticsService
	broadcaster      *messaging.TrackBroadcaster
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
	upgrader         websocket.Upgrader
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(analyticsService *services.AnalyticsService, broadcaster *messaging.TrackBroadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analyticsService: analyticsService,
		broadcaster:      broadcaster,
		logger:           logger,
		perfTracker:      perfTracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin is enforced by the CORS layer; the feed itself
			// carries no credentials.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetDashboard handles GET /api/v1/analytics/dashboard
func (h *AnalyticsHandlers) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.DashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetDrills handles GET /api/v1/analytics/drills
func (h *AnalyticsHandlers) GetDrills(c *gin.Context) {
	drills, err := h.analyticsService.ListDrills()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drills)
}

// GetDrill handles GET /api/v1/analytics/drills/:id
func (h *AnalyticsHandlers) GetDrill(c *gin.Context) {
	record, err := h.analyticsService.GetDrill(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetLiveFeed handles GET /api/v1/analytics/live - upgrades to a websocket
// that streams tracking events as they arrive.
func (h *AnalyticsHandlers) GetLiveFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Track().Error("websocket upgrade failed", "error", err)
		return
	}

	client := &messaging.TrackClient{
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump forwards broadcast events to the client until its channel closes.
func (h *AnalyticsHandlers) writePump(client *messaging.TrackClient) {
	defer client.Conn.Close()
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump drains the connection to catch the close frame.
func (h *AnalyticsHandlers) readPump(client *messaging.TrackClient) {
	defer h.broadcaster.Unregister(client)
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
