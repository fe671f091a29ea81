package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/utils"
)

const (
	resetEmailSubject = "Password Reset Request"
	providerSendGrid  = "sendgrid"
	providerLog       = "log"
)

// EmailSender delivers the password reset link.
type EmailSender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetURL string) error
}

// NewEmailSender returns the sender selected by the email settings.
func NewEmailSender(cfg *config.EmailSettings) (EmailSender, error) {
	switch cfg.Provider {
	case providerSendGrid:
		return NewSendGridEmailService(cfg)
	case providerLog, "":
		return &LogEmailService{}, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// ResetURL builds the frontend link a reset email points at.
func ResetURL(frontendURL, token string) string {
	return fmt.Sprintf("%s%s?%s=%s",
		frontendURL, constants.ResetPasswordPagePath, constants.ResetTokenQueryParam, url.QueryEscape(token))
}

// SendGridEmailService sends emails through the SendGrid API.
type SendGridEmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridEmailService creates a SendGrid sender from the email settings.
func NewSendGridEmailService(cfg *config.EmailSettings) (*SendGridEmailService, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key not set")
	}
	return &SendGridEmailService{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}, nil
}

// SendPasswordResetEmail sends a password reset email to the specified user.
// Non-2xx answers from SendGrid are errors.
func (s *SendGridEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetURL string) error {
	to := mail.NewEmail(toName, toEmail)
	plainTextContent := fmt.Sprintf(
		"You are receiving this email because you (or someone else) has requested the reset of a password. "+
			"Please use the following link to reset your password: %s\n\nThe link expires in a few minutes.", resetURL)
	htmlContent := fmt.Sprintf(
		"<p>You are receiving this email because you (or someone else) has requested the reset of a password.</p>"+
			"<p><a href=\"%s\">Reset Password</a></p><p>The link expires in a few minutes.</p>", resetURL)
	message := mail.NewSingleEmail(s.from, resetEmailSubject, to, plainTextContent, htmlContent)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected password reset email: status %d", response.StatusCode)
	}

	log.Info().
		Int("status_code", response.StatusCode).
		Str("email", utils.MaskEmail(toEmail)).
		Msg("Password reset email sent")
	return nil
}

// LogEmailService writes reset links to the log instead of sending mail.
// Only meant for development.
type LogEmailService struct{}

// SendPasswordResetEmail logs the link at info level.
func (s *LogEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetURL string) error {
	log.Info().
		Str("email", utils.MaskEmail(toEmail)).
		Str("reset_url", resetURL).
		Msg("Password reset email (log provider)")
	return nil
}
