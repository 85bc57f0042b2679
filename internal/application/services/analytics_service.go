package services

import (
	"time"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/messaging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
)

// AnalyticsService aggregates drill results and records tracking callbacks
// from delivered emails.
type AnalyticsService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	store       *persistence.Store
	broadcaster *messaging.TrackBroadcaster
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, store *persistence.Store, broadcaster *messaging.TrackBroadcaster) *AnalyticsService {
	return &AnalyticsService{
		logger:      logger,
		perfTracker: perfTracker,
		store:       store,
		broadcaster: broadcaster,
	}
}

// DashboardStats aggregates the drill collection.
func (a *AnalyticsService) DashboardStats() (entities.DashboardStats, error) {
	marker := a.perfTracker.StartOperation("analytics_dashboard")
	defer marker.Complete()
	return a.store.GetDashboardStats()
}

// ListDrills returns the full drill history in send order.
func (a *AnalyticsService) ListDrills() ([]entities.DrillRecord, error) {
	return a.store.GetAllDrills()
}

// GetDrill returns one drill record.
func (a *AnalyticsService) GetDrill(id string) (entities.DrillRecord, error) {
	return a.store.GetDrillByID(id)
}

// TrackOpen records an open-pixel hit. Status escalates to opened unless the
// target already clicked.
func (a *AnalyticsService) TrackOpen(drillID, ip, userAgent string) (entities.DrillRecord, error) {
	now := time.Now().UTC()
	opened := true
	status := entities.StatusOpened
	record, err := a.store.UpdateDrillAnalytics(drillID, entities.AnalyticsPatch{
		EmailOpened: &opened,
		OpenedAt:    &now,
		IPAddress:   &ip,
		UserAgent:   &userAgent,
		Status:      &status,
	})
	if err != nil {
		return entities.DrillRecord{}, err
	}

	a.logger.Track().Info("email opened", "drillId", drillID, "ip", ip)
	a.broadcaster.Publish(messaging.TrackEvent{
		DrillID:   drillID,
		Type:      "open",
		Status:    record.Analytics.Status,
		Timestamp: now,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return record, nil
}

// TrackClick records a tracked-link click.
func (a *AnalyticsService) TrackClick(drillID, ip, userAgent string) (entities.DrillRecord, error) {
	now := time.Now().UTC()
	clicked := true
	status := entities.StatusClicked
	record, err := a.store.UpdateDrillAnalytics(drillID, entities.AnalyticsPatch{
		LinkClicked: &clicked,
		ClickedAt:   &now,
		IPAddress:   &ip,
		UserAgent:   &userAgent,
		Status:      &status,
	})
	if err != nil {
		return entities.DrillRecord{}, err
	}

	a.logger.Track().Info("link clicked", "drillId", drillID, "ip", ip)
	a.broadcaster.Publish(messaging.TrackEvent{
		DrillID:   drillID,
		Type:      "click",
		Status:    record.Analytics.Status,
		Timestamp: now,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return record, nil
}
