package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/metrics"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/repository"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// OwnerCache drops cached project reads that embed a user's profile.
type OwnerCache interface {
	InvalidateOwner(ctx context.Context, userID int64)
}

// UserService handles the authenticated user's own account
type UserService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	tokens   auth.TokenIssuer
	owners   OwnerCache
	metrics  *metrics.Metrics
}

// NewUserService creates a new UserService. owners may be nil.
func NewUserService(
	userRepo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	owners OwnerCache,
	m *metrics.Metrics,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		owners:   owners,
		metrics:  m,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdateProfile applies the provided profile fields. A changed email must
// not belong to another account.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}

	if update.Email != nil {
		email := utils.NormalizeEmail(*update.Email)
		update.Email = &email

		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email existence: %w", err)
			}
			if exists {
				return nil, utils.NewDuplicateError("User", constants.ColumnEmail, email)
			}
		}
	}

	// Clearing the avatar restores the default picture
	if update.Avatar != nil && strings.TrimSpace(*update.Avatar) == "" {
		avatar := constants.DefaultAvatar
		update.Avatar = &avatar
	}

	owner := models.Owner{Name: user.Name, Avatar: user.Avatar}
	user.ApplyProfile(update)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.owners != nil && owner != (models.Owner{Name: user.Name, Avatar: user.Avatar}) {
		s.owners.InvalidateOwner(ctx, user.ID)
	}

	utils.LogAuth(constants.LogEventProfileUpdate, user.ID, "", true, "")

	return user.Sanitize(), nil
}

// ChangePassword replaces the password after checking the current one and
// returns a fresh bearer token. Any outstanding reset token is dropped.
func (s *UserService) ChangePassword(ctx context.Context, id int64, change *models.PasswordChange) (string, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(change.CurrentPassword, user.PasswordHash) {
		s.record(user.ID, false, "wrong current password")
		return "", utils.NewUnauthorizedError(constants.MsgWrongCurrentPassword)
	}

	passwordHash, err := s.hasher.Hash(change.NewPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return "", err
	}

	if user.ResetPasswordToken != nil {
		if err := s.userRepo.ClearResetToken(ctx, user.ID); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to clear reset token after password change")
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.record(user.ID, true, "")

	return token, nil
}

func (s *UserService) record(userID int64, success bool, reason string) {
	utils.LogAuth(constants.LogEventPasswordChange, userID, "", success, reason)
	s.metrics.RecordAuthEvent(constants.LogEventPasswordChange, success)
}
