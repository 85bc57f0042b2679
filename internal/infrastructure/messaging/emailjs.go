package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

// EmailJSSender delivers drill emails through the EmailJS REST API. The
// template referenced by the operator's credentials receives the standard
// parameter set: to_email, to_name, subject, message, scam_link, from_name,
// tracking_pixel.
type EmailJSSender struct {
	endpoint   string
	baseURL    string
	senderName string
	logger     *slog.Logger
	httpClient *http.Client
}

// NewEmailJSSender creates the email channel adapter. baseURL is this
// server's public origin, used to build tracking URLs.
func NewEmailJSSender(endpoint, baseURL, senderName string, logger *slog.Logger) *EmailJSSender {
	return &EmailJSSender{
		endpoint:   endpoint,
		baseURL:    baseURL,
		senderName: senderName,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *EmailJSSender) Channel() string { return "email" }

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (s *EmailJSSender) Send(ctx context.Context, cfg *entities.EmailConfig, msg Message) (bool, error) {
	if cfg == nil || !cfg.EmailJS.IsConfigured() {
		s.logger.Warn("EmailJS not configured, simulating email send",
			"drillId", msg.DrillID, "to", msg.Contact, "subject", msg.Subject)
		return true, nil
	}

	pixel, tracked := TrackingURLs(s.baseURL, msg.DrillID, msg.ScamLink)
	payload := emailJSRequest{
		ServiceID:  cfg.EmailJS.ServiceID,
		TemplateID: cfg.EmailJS.TemplateID,
		UserID:     cfg.EmailJS.PublicKey,
		TemplateParams: map[string]string{
			"to_email":       msg.Contact,
			"to_name":        msg.Name,
			"subject":        msg.Subject,
			"message":        msg.Content,
			"scam_link":      tracked,
			"from_name":      s.senderName,
			"tracking_pixel": pixel,
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return false, fmt.Errorf("failed to build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: emailjs: %v", errs.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: emailjs status %d: %s", errs.ErrDeliveryFailed, resp.StatusCode, string(body))
	}

	s.logger.Info("email sent", "drillId", msg.DrillID, "to", msg.Contact, "subject", msg.Subject)
	return false, nil
}
