package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/metrics"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/repository"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// PasswordResetService runs the forgot-password and reset-password flows.
type PasswordResetService struct {
	userRepo    repository.UserRepository
	resetTokens *auth.ResetTokenManager
	hasher      auth.PasswordHasher
	tokens      auth.TokenIssuer
	email       EmailSender
	frontendURL string
	metrics     *metrics.Metrics
}

// NewPasswordResetService creates a new PasswordResetService.
//
// Parameters:
//   - userRepo: where users are looked up
//   - resetTokens: issues and consumes reset tokens
//   - hasher: hashes the new password
//   - tokens: issues the bearer token returned after a reset
//   - email: delivers the reset link
//   - frontendURL: base URL of the web client the link points at
//   - m: metrics, may be nil
func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetTokens *auth.ResetTokenManager,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	email EmailSender,
	frontendURL string,
	m *metrics.Metrics,
) *PasswordResetService {
	return &PasswordResetService{
		userRepo:    userRepo,
		resetTokens: resetTokens,
		hasher:      hasher,
		tokens:      tokens,
		email:       email,
		frontendURL: frontendURL,
		metrics:     m,
	}
}

// ForgotPassword issues a reset token and emails the link. It succeeds for
// unknown emails too, so callers cannot learn which addresses exist. When
// the email cannot be delivered the token is revoked and the failure only
// logged.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.record(constants.LogEventPasswordResetRequest, 0, email, false, "user not found")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	plain, err := s.resetTokens.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, constants.ExternalCallTimeout)
	defer cancel()

	if err := s.email.SendPasswordResetEmail(sendCtx, user.Email, user.Name, ResetURL(s.frontendURL, plain)); err != nil {
		utils.LogError(err, map[string]interface{}{
			"operation": "send_reset_email",
			"user_id":   user.ID,
		})
		if revokeErr := s.resetTokens.Revoke(ctx, user.ID); revokeErr != nil {
			log.Error().Err(revokeErr).Int64("user_id", user.ID).Msg("Failed to revoke undelivered reset token")
		}
		s.record(constants.LogEventPasswordResetRequest, user.ID, email, false, "email not sent")
		return nil
	}

	s.record(constants.LogEventPasswordResetRequest, user.ID, email, true, "")
	return nil
}

// ResetPassword sets a new password with a reset token and returns a fresh
// bearer token. Unknown, expired and already used tokens all give the same
// invalid-token error; the token is consumed and the password written in one
// conditional update.
func (s *PasswordResetService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) (string, error) {
	userID, ok, err := s.resetTokens.Lookup(ctx, req.Token)
	if err != nil {
		return "", err
	}
	if !ok {
		s.record(constants.LogEventPasswordReset, 0, "", false, "unknown or expired token")
		return "", utils.NewInvalidResetTokenError()
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	consumed, err := s.resetTokens.ConsumeWithPassword(ctx, userID, req.Token, passwordHash)
	if err != nil {
		return "", err
	}
	if !consumed {
		s.record(constants.LogEventPasswordReset, userID, "", false, "token already used")
		return "", utils.NewInvalidResetTokenError()
	}

	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.record(constants.LogEventPasswordReset, userID, "", true, "")

	return token, nil
}

// PurgeExpiredTokens clears reset tokens whose expiry has passed.
func (s *PasswordResetService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.resetTokens.PurgeExpired(ctx)
}

func (s *PasswordResetService) record(event string, userID int64, email string, success bool, reason string) {
	utils.LogAuth(event, userID, email, success, reason)
	s.metrics.RecordAuthEvent(event, success)
}
