// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/mockdrill/mockdrill-go/internal/application/services"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/email"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/genai"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/messaging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/security"
	"github.com/mockdrill/mockdrill-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	AuthService      *services.AuthService
	SettingsService  *services.SettingsService
	WizardService    *services.WizardService
	AnalyticsService *services.AnalyticsService

	// Infrastructure Dependencies
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	Store       *persistence.Store
	Broadcaster *messaging.TrackBroadcaster
	Mailer      email.Service
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, store *persistence.Store, mailer email.Service) *Container {
	broadcaster := messaging.NewTrackBroadcaster(logger.Track())

	senders := []messaging.Sender{
		messaging.NewEmailJSSender(config.EmailJSEndpoint, config.BaseURL, config.SenderName, logger.Delivery()),
		messaging.NewSMSSender(config.SMSEndpoint, config.SenderName, config.SimulatedSendDelay, logger.Delivery()),
		messaging.NewWhatsAppSender(config.WhatsAppEndpoint, config.SenderName, config.SimulatedSendDelay, logger.Delivery()),
	}

	generator := genai.NewClient(config.GeminiEndpoint, config.GeminiMaxTokens)
	verifier := security.PlaintextVerifier{}

	return &Container{
		AuthService:      services.NewAuthService(logger, perfTracker, store, verifier, mailer, config.BaseURL),
		SettingsService:  services.NewSettingsService(logger, store),
		WizardService:    services.NewWizardService(logger, perfTracker, store, generator, senders, config.CompleteResetDelay),
		AnalyticsService: services.NewAnalyticsService(logger, perfTracker, store, broadcaster),

		Logger:      logger,
		PerfTracker: perfTracker,
		Store:       store,
		Broadcaster: broadcaster,
		Mailer:      mailer,
	}
}
