package services

import (
	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/genai"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
)

// SettingsService reads and updates the operator's credentials and
// preferences.
type SettingsService struct {
	logger *logging.ChanneledLogger
	store  *persistence.Store
}

// NewSettingsService creates a new settings service.
func NewSettingsService(logger *logging.ChanneledLogger, store *persistence.Store) *SettingsService {
	return &SettingsService{logger: logger, store: store}
}

// Get returns the current settings.
func (s *SettingsService) Get() (entities.UserSettings, error) {
	return s.store.GetSettings()
}

// Save deep-merges partial into the stored settings and returns the result.
func (s *SettingsService) Save(partial entities.UserSettings) (entities.UserSettings, error) {
	merged, err := s.store.SaveSettings(partial)
	if err != nil {
		return entities.UserSettings{}, err
	}
	s.logger.Storage().Info("settings updated",
		"geminiKeySet", merged.GeminiAPIKey != "",
		"geminiKeyValid", genai.ValidateAPIKey(merged.GeminiAPIKey),
		"emailConfigured", merged.EmailConfig != nil && merged.EmailConfig.EmailJS.IsConfigured(),
		"smsConfigured", merged.EmailConfig != nil && merged.EmailConfig.SMS.IsConfigured(),
		"whatsappConfigured", merged.EmailConfig != nil && merged.EmailConfig.WhatsApp.IsConfigured())
	return merged, nil
}

// ChannelStatus summarizes which integrations are ready for real sends.
type ChannelStatus struct {
	GeminiKeyPresent   bool `json:"geminiKeyPresent"`
	GeminiKeyValid     bool `json:"geminiKeyValid"`
	EmailConfigured    bool `json:"emailConfigured"`
	SMSConfigured      bool `json:"smsConfigured"`
	WhatsAppConfigured bool `json:"whatsappConfigured"`
}

// Status reports integration readiness without exposing credential values.
func (s *SettingsService) Status() (ChannelStatus, error) {
	settings, err := s.store.GetSettings()
	if err != nil {
		return ChannelStatus{}, err
	}
	status := ChannelStatus{
		GeminiKeyPresent: settings.GeminiAPIKey != "",
		GeminiKeyValid:   genai.ValidateAPIKey(settings.GeminiAPIKey),
	}
	if settings.EmailConfig != nil {
		status.EmailConfigured = settings.EmailConfig.EmailJS.IsConfigured()
		status.SMSConfigured = settings.EmailConfig.SMS.IsConfigured()
		status.WhatsAppConfigured = settings.EmailConfig.WhatsApp.IsConfigured()
	}
	return status, nil
}
