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

// unknownUserPassword is hashed once per service so signin for an unknown
// email costs the same as a wrong password.
const unknownUserPassword = "unknown-user-placeholder"

// AuthService handles signup and signin
type AuthService struct {
	userRepo    repository.UserRepository
	hasher      auth.PasswordHasher
	tokens      auth.TokenIssuer
	metrics     *metrics.Metrics
	dummyDigest string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	m *metrics.Metrics,
) *AuthService {
	dummyDigest, err := hasher.Hash(unknownUserPassword)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prepare placeholder digest for unknown users")
	}

	return &AuthService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens,
		metrics:     m,
		dummyDigest: dummyDigest,
	}
}

// Signup creates a new user account and signs it in.
// The password is hashed here, before the row is written.
//
// Returns:
//   - the sanitized new user
//   - a bearer token for the new user
//   - a duplicate error (400) if the email is taken
func (s *AuthService) Signup(ctx context.Context, reg *models.UserRegistration) (*models.User, string, error) {
	email := utils.NormalizeEmail(reg.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		s.record(constants.LogEventRegister, 0, email, false, "email taken")
		return nil, "", utils.NewDuplicateError("User", constants.ColumnEmail, email)
	}

	passwordHash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(reg.Name, email, constants.DefaultAvatar)
	user.PasswordHash = passwordHash

	// The unique constraint still decides when two signups race
	if err := s.userRepo.Create(ctx, user); err != nil {
		if utils.IsDuplicateError(err) {
			s.record(constants.LogEventRegister, 0, email, false, "email taken")
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.record(constants.LogEventRegister, user.ID, user.Email, true, "")

	return user.Sanitize(), token, nil
}

// Signin verifies credentials and issues a bearer token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Signin(ctx context.Context, creds *models.UserCredentials) (*models.User, string, error) {
	email := utils.NormalizeEmail(creds.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			s.hasher.Verify(creds.Password, s.dummyDigest)
			s.record(constants.LogEventLogin, 0, email, false, "user not found")
			return nil, "", utils.NewInvalidCredentialsError()
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		s.record(constants.LogEventLogin, user.ID, email, false, "invalid password")
		return nil, "", utils.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.record(constants.LogEventLogin, user.ID, email, true, "")

	return user.Sanitize(), token, nil
}

func (s *AuthService) record(event string, userID int64, email string, success bool, reason string) {
	utils.LogAuth(event, userID, email, success, reason)
	s.metrics.RecordAuthEvent(event, success)
}
