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

// WhatsAppSender delivers drill messages through a WhatsApp Business API
// gateway: a JSON POST with Bearer authentication.
type WhatsAppSender struct {
	endpoint      string
	defaultSender string
	simulateDelay time.Duration
	logger        *slog.Logger
	httpClient    *http.Client
}

// NewWhatsAppSender creates the WhatsApp channel adapter.
func NewWhatsAppSender(endpoint, defaultSender string, simulateDelay time.Duration, logger *slog.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		endpoint:      endpoint,
		defaultSender: defaultSender,
		simulateDelay: simulateDelay,
		logger:        logger,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *WhatsAppSender) Channel() string { return "whatsapp" }

type whatsAppRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
	From string `json:"from"`
}

func (s *WhatsAppSender) Send(ctx context.Context, cfg *entities.EmailConfig, msg Message) (bool, error) {
	var waCfg *entities.WhatsAppConfig
	if cfg != nil {
		waCfg = cfg.WhatsApp
	}
	if !waCfg.IsConfigured() {
		s.logger.Warn("WhatsApp gateway not configured, simulating send",
			"drillId", msg.DrillID, "to", msg.Contact)
		select {
		case <-time.After(s.simulateDelay):
		case <-ctx.Done():
			return true, ctx.Err()
		}
		return true, nil
	}

	from := waCfg.FromNumber
	if from == "" {
		from = s.defaultSender
	}
	payload := whatsAppRequest{
		To:   msg.Contact,
		Body: msg.Content + " " + msg.ScamLink,
		From: from,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal whatsapp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return false, fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+waCfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: whatsapp: %v", errs.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: whatsapp status %d: %s", errs.ErrDeliveryFailed, resp.StatusCode, string(body))
	}

	s.logger.Info("whatsapp sent", "drillId", msg.DrillID, "to", msg.Contact)
	return false, nil
}
