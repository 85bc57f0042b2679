package entities

// UserSettings stores the operator's API credentials and preferences. Field
// names mirror the browser-era user_settings payload.
type UserSettings struct {
	GeminiAPIKey string       `json:"geminiApiKey,omitempty"`
	EmailConfig  *EmailConfig `json:"emailConfig,omitempty"`
	Preferences  *Preferences `json:"preferences,omitempty"`
}

// EmailConfig groups the per-channel delivery credentials.
type EmailConfig struct {
	EmailJS  *EmailJSConfig  `json:"emailjs,omitempty"`
	SMS      *SMSConfig      `json:"sms,omitempty"`
	WhatsApp *WhatsAppConfig `json:"whatsapp,omitempty"`
}

// EmailJSConfig holds the EmailJS transactional-email credentials.
type EmailJSConfig struct {
	ServiceID  string `json:"serviceId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
}

// IsConfigured reports whether every EmailJS field is present.
func (c *EmailJSConfig) IsConfigured() bool {
	return c != nil && c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

// SMSConfig holds SMS gateway credentials.
type SMSConfig struct {
	APIKey    string `json:"apiKey,omitempty"`
	APISecret string `json:"apiSecret,omitempty"`
	From      string `json:"from,omitempty"`
}

// IsConfigured reports whether the SMS gateway can be called for real.
func (c *SMSConfig) IsConfigured() bool {
	return c != nil && c.APIKey != ""
}

// WhatsAppConfig holds WhatsApp Business API credentials.
type WhatsAppConfig struct {
	APIKey     string `json:"apiKey,omitempty"`
	APISecret  string `json:"apiSecret,omitempty"`
	FromNumber string `json:"fromNumber,omitempty"`
}

// IsConfigured reports whether the WhatsApp gateway can be called for real.
func (c *WhatsAppConfig) IsConfigured() bool {
	return c != nil && c.APIKey != ""
}

// Preferences holds dashboard display preferences.
type Preferences struct {
	Theme         string `json:"theme,omitempty"`
	Notifications *bool  `json:"notifications,omitempty"`
}

// Merge deep-merges partial into s: top-level keys merge one level, and the
// three channel configurations merge key-by-key one level deeper rather than
// being replaced wholesale. Empty strings in partial mean "not provided" and
// leave the existing value alone.
func (s *UserSettings) Merge(partial UserSettings) {
	if partial.GeminiAPIKey != "" {
		s.GeminiAPIKey = partial.GeminiAPIKey
	}
	if partial.EmailConfig != nil {
		if s.EmailConfig == nil {
			s.EmailConfig = &EmailConfig{}
		}
		s.EmailConfig.merge(partial.EmailConfig)
	}
	if partial.Preferences != nil {
		if s.Preferences == nil {
			s.Preferences = &Preferences{}
		}
		if partial.Preferences.Theme != "" {
			s.Preferences.Theme = partial.Preferences.Theme
		}
		if partial.Preferences.Notifications != nil {
			s.Preferences.Notifications = partial.Preferences.Notifications
		}
	}
}

func (c *EmailConfig) merge(partial *EmailConfig) {
	if partial.EmailJS != nil {
		if c.EmailJS == nil {
			c.EmailJS = &EmailJSConfig{}
		}
		if partial.EmailJS.ServiceID != "" {
			c.EmailJS.ServiceID = partial.EmailJS.ServiceID
		}
		if partial.EmailJS.TemplateID != "" {
			c.EmailJS.TemplateID = partial.EmailJS.TemplateID
		}
		if partial.EmailJS.PublicKey != "" {
			c.EmailJS.PublicKey = partial.EmailJS.PublicKey
		}
	}
	if partial.SMS != nil {
		if c.SMS == nil {
			c.SMS = &SMSConfig{}
		}
		if partial.SMS.APIKey != "" {
			c.SMS.APIKey = partial.SMS.APIKey
		}
		if partial.SMS.APISecret != "" {
			c.SMS.APISecret = partial.SMS.APISecret
		}
		if partial.SMS.From != "" {
			c.SMS.From = partial.SMS.From
		}
	}
	if partial.WhatsApp != nil {
		if c.WhatsApp == nil {
			c.WhatsApp = &WhatsAppConfig{}
		}
		if partial.WhatsApp.APIKey != "" {
			c.WhatsApp.APIKey = partial.WhatsApp.APIKey
		}
		if partial.WhatsApp.APISecret != "" {
			c.WhatsApp.APISecret = partial.WhatsApp.APISecret
		}
		if partial.WhatsApp.FromNumber != "" {
			c.WhatsApp.FromNumber = partial.WhatsApp.FromNumber
		}
	}
}
