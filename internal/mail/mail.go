// Package mail sends transactional email through Resend.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Sender delivers account emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendConfirmationEmail(ctx context.Context, email, username, token string) error
	SendPasswordResetEmail(ctx context.Context, email, username, token string) error
}

// ResendSender sends email through the Resend API. In development (or
// when no API key is configured) it logs the link instead of sending.
type ResendSender struct {
	client  *resend.Client
	from    string
	baseURL string
	logger  *slog.Logger
	isDev   bool
}

// NewResendSender creates a Sender backed by Resend.
func NewResendSender(apiKey, from, baseURL string, logger *slog.Logger, isDev bool) *ResendSender {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &ResendSender{
		client:  client,
		from:    from,
		baseURL: baseURL,
		logger:  logger,
		isDev:   isDev,
	}
}

// SendConfirmationEmail mails the address-confirmation link.
func (s *ResendSender) SendConfirmationEmail(ctx context.Context, email, username, token string) error {
	confirmURL := fmt.Sprintf("%s/api/auth/confirm/%s", s.baseURL, token)
	subject := "Confirm your email"
	body := fmt.Sprintf(
		"Hi %s,\n\nConfirm your email address by opening this link:\n\n%s\n\nIf you did not sign up, ignore this message.\n",
		username, confirmURL,
	)

	return s.send(ctx, "confirmation", email, subject, body, confirmURL)
}

// SendPasswordResetEmail mails the password-reset link.
func (s *ResendSender) SendPasswordResetEmail(ctx context.Context, email, username, token string) error {
	resetURL := fmt.Sprintf("%s/api/auth/password/reset/%s", s.baseURL, token)
	subject := "Reset your password"
	body := fmt.Sprintf(
		"Hi %s,\n\nReset your password by opening this link:\n\n%s\n\nIf you did not request a reset, ignore this message.\n",
		username, resetURL,
	)

	return s.send(ctx, "password_reset", email, subject, body, resetURL)
}

func (s *ResendSender) send(ctx context.Context, kind, to, subject, body, link string) error {
	if s.isDev || s.client == nil {
		s.logger.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject, "url", link)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	s.logger.Info("email sent", "type", kind, "to", to)
	return nil
}
