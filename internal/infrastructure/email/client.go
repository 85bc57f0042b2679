// Package email provides the operator-facing mailer for transactional emails.
// This is distinct from the drill delivery channels in messaging: it talks to
// the signed-up operator, never to drill targets.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/mockdrill/mockdrill-go/internal/infrastructure/email/templates"
)

// Service defines the interface for sending operator emails, allowing for
// mock implementations in tests.
type Service interface {
	SendWelcomeEmail(toEmail, name, dashboardURL string) error
	SendPasswordResetEmail(toEmail, name, resetURL string) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new mailer. An empty apiKey is an error; callers that
// run without a mailer should use NoopService instead.
func NewService(apiKey, fromEmail, fromName string) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendWelcomeEmail composes and sends the signup welcome email.
func (c *ResendClient) SendWelcomeEmail(toEmail, name, dashboardURL string) error {
	content := templates.GetWelcomeEmailContent(templates.WelcomeEmailProps{
		Name:         name,
		DashboardURL: dashboardURL,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "Your MockDrill account is ready",
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: "Welcome to MockDrill",
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send welcome email via Resend: %w", err)
	}
	return nil
}

// SendPasswordResetEmail composes and sends the password reset email.
func (c *ResendClient) SendPasswordResetEmail(toEmail, name, resetURL string) error {
	content := templates.GetPasswordResetEmailContent(templates.PasswordResetEmailProps{
		Name:     name,
		ResetURL: resetURL,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "Reset your MockDrill password",
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: "Reset your MockDrill password",
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send password reset email via Resend: %w", err)
	}
	return nil
}

// NoopService is used when no mailer is configured. Sends are silently
// skipped.
type NoopService struct{}

func (NoopService) SendWelcomeEmail(toEmail, name, dashboardURL string) error { return nil }

func (NoopService) SendPasswordResetEmail(toEmail, name, resetURL string) error { return nil }
