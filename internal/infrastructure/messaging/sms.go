package messaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

// SMSSender delivers drill messages through a Twilio-style SMS gateway: a
// form-encoded POST authenticated with Basic key:secret.
type SMSSender struct {
	endpoint      string
	defaultSender string
	simulateDelay time.Duration
	logger        *slog.Logger
	httpClient    *http.Client
}

// NewSMSSender creates the SMS channel adapter. simulateDelay mimics gateway
// latency when credentials are absent so the dashboard's sending state stays
// visible.
func NewSMSSender(endpoint, defaultSender string, simulateDelay time.Duration, logger *slog.Logger) *SMSSender {
	return &SMSSender{
		endpoint:      endpoint,
		defaultSender: defaultSender,
		simulateDelay: simulateDelay,
		logger:        logger,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SMSSender) Channel() string { return "sms" }

func (s *SMSSender) Send(ctx context.Context, cfg *entities.EmailConfig, msg Message) (bool, error) {
	var smsCfg *entities.SMSConfig
	if cfg != nil {
		smsCfg = cfg.SMS
	}
	if !smsCfg.IsConfigured() {
		s.logger.Warn("SMS gateway not configured, simulating send",
			"drillId", msg.DrillID, "to", msg.Contact)
		select {
		case <-time.After(s.simulateDelay):
		case <-ctx.Done():
			return true, ctx.Err()
		}
		return true, nil
	}

	from := smsCfg.From
	if from == "" {
		from = s.defaultSender
	}
	form := url.Values{}
	form.Set("To", msg.Contact)
	form.Set("Body", msg.Content+" "+msg.ScamLink)
	form.Set("From", from)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	auth := base64.StdEncoding.EncodeToString([]byte(smsCfg.APIKey + ":" + smsCfg.APISecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: sms: %v", errs.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: sms status %d: %s", errs.ErrDeliveryFailed, resp.StatusCode, string(body))
	}

	s.logger.Info("sms sent", "drillId", msg.DrillID, "to", msg.Contact)
	return false, nil
}
