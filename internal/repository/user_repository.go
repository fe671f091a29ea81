package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/database"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// UserRepository defines methods for interacting with user data
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	SetResetToken(ctx context.Context, userID int64, tokenHash string, expire time.Time) error
	GetUserIDByResetToken(ctx context.Context, tokenHash string, now time.Time) (int64, error)
	ConsumeResetToken(ctx context.Context, userID int64, tokenHash string, now time.Time, newPasswordHash string) (bool, error)
	ClearResetToken(ctx context.Context, userID int64) error
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// SQLUserRepository is the database/sql implementation of UserRepository.
// Queries are written with '?' placeholders and rebound for the pool's dialect.
type SQLUserRepository struct {
	db *database.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Pool) UserRepository {
	return &SQLUserRepository{
		db: db,
	}
}

const userColumns = `id, name, email, password_hash, avatar, bio, location, website, github, linkedin, twitter,
        reset_password_token, reset_password_expire, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUser reads a row selected with userColumns.
func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var bio, location, website, github, linkedin, twitter, resetToken sql.NullString
	var resetExpire sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&bio,
		&location,
		&website,
		&github,
		&linkedin,
		&twitter,
		&resetToken,
		&resetExpire,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Bio = bio.String
	user.Location = location.String
	user.Website = website.String
	user.GitHub = github.String
	user.LinkedIn = linkedin.String
	user.Twitter = twitter.String
	if resetToken.Valid {
		user.ResetPasswordToken = &resetToken.String
	}
	if resetExpire.Valid {
		user.ResetPasswordExpire = &resetExpire.Time
	}

	return user, nil
}

// nullable maps empty optional profile fields to NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func emailTakenError(email string) *utils.AppError {
	return &utils.AppError{
		Err:        utils.ErrDuplicate,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgEmailTaken,
		DevInfo:    fmt.Sprintf("email '%s' already registered", utils.MaskEmail(email)),
		Field:      constants.ColumnEmail,
	}
}

// Create adds a new user to the database
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = utils.NormalizeEmail(user.Email)
	if user.Avatar == "" {
		user.Avatar = constants.DefaultAvatar
	}

	query := `
        INSERT INTO users (name, email, password_hash, avatar, bio, location, website, github, linkedin, twitter, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := r.db.InsertReturningID(ctx, r.db, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Avatar,
		nullable(user.Bio),
		nullable(user.Location),
		nullable(user.Website),
		nullable(user.GitHub),
		nullable(user.LinkedIn),
		nullable(user.Twitter),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return emailTakenError(user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id

	log.Info().
		Int64("user_id", user.ID).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("User created")

	return nil
}

// GetByID retrieves a user by ID
func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	startTime := time.Now()

	query := r.db.Rebind(`
        SELECT ` + userColumns + `
        FROM users
        WHERE id = ?`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	startTime := time.Now()

	query := r.db.Rebind(`
        SELECT ` + userColumns + `
        FROM users
        WHERE email = ?`)

	normalized := utils.NormalizeEmail(email)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, normalized))

	utils.LogDBQuery(query, []interface{}{utils.MaskEmail(normalized)}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", "email")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// Update writes the profile fields of a user. The password and reset token
// have their own statements.
func (r *SQLUserRepository) Update(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	user.UpdatedAt = time.Now().UTC()
	user.Email = utils.NormalizeEmail(user.Email)

	query := r.db.Rebind(`
        UPDATE users
        SET name = ?, email = ?, avatar = ?, bio = ?, location = ?, website = ?,
            github = ?, linkedin = ?, twitter = ?, updated_at = ?
        WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Avatar,
		nullable(user.Bio),
		nullable(user.Location),
		nullable(user.Website),
		nullable(user.GitHub),
		nullable(user.LinkedIn),
		nullable(user.Twitter),
		user.UpdatedAt,
		user.ID,
	)

	utils.LogDBQuery(query, []interface{}{user.ID}, time.Since(startTime), err)

	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return emailTakenError(user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectOneRow(result, "User", user.ID)
}

// UpdatePassword stores a new password digest
func (r *SQLUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	startTime := time.Now()

	query := r.db.Rebind(`
        UPDATE users
        SET password_hash = ?, updated_at = ?
        WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)

	utils.LogDBQuery(query, []interface{}{passwordHash, id}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectOneRow(result, "User", id)
}

// ExistsByEmail checks if a user with the given email exists
func (r *SQLUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	startTime := time.Now()

	query := r.db.Rebind(`SELECT COUNT(1) FROM users WHERE email = ?`)

	var count int
	err := r.db.QueryRowContext(ctx, query, utils.NormalizeEmail(email)).Scan(&count)

	utils.LogDBQuery(query, []interface{}{utils.MaskEmail(email)}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return count > 0, nil
}

// SetResetToken stores a reset token digest and its expiry, replacing any previous pair
func (r *SQLUserRepository) SetResetToken(ctx context.Context, userID int64, tokenHash string, expire time.Time) error {
	startTime := time.Now()

	query := r.db.Rebind(`
        UPDATE users
        SET reset_password_token = ?, reset_password_expire = ?
        WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, tokenHash, expire.UTC(), userID)

	utils.LogDBQuery(query, []interface{}{tokenHash, userID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return expectOneRow(result, "User", userID)
}

// GetUserIDByResetToken finds the user holding an unexpired reset token digest
func (r *SQLUserRepository) GetUserIDByResetToken(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	startTime := time.Now()

	query := r.db.Rebind(`
        SELECT id
        FROM users
        WHERE reset_password_token = ? AND reset_password_expire > ?`)

	var userID int64
	err := r.db.QueryRowContext(ctx, query, tokenHash, now.UTC()).Scan(&userID)

	utils.LogDBQuery(query, []interface{}{tokenHash, now}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, utils.NewNotFoundError("User", "reset token")
		}
		return 0, fmt.Errorf("failed to look up reset token: %w", err)
	}

	return userID, nil
}

// ConsumeResetToken clears the reset pair only if it still matches and has
// not expired. The whole check happens inside one UPDATE, so concurrent
// callers cannot both succeed.
func (r *SQLUserRepository) ConsumeResetToken(ctx context.Context, userID int64, tokenHash string, now time.Time, newPasswordHash string) (bool, error) {
	startTime := time.Now()

	set := `reset_password_token = NULL, reset_password_expire = NULL, updated_at = ?`
	args := []interface{}{now.UTC()}
	if newPasswordHash != "" {
		set += `, password_hash = ?`
		args = append(args, newPasswordHash)
	}
	args = append(args, userID, tokenHash, now.UTC())

	query := r.db.Rebind(`
        UPDATE users
        SET ` + set + `
        WHERE id = ? AND reset_password_token = ? AND reset_password_expire > ?`)

	result, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to consume reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows == 1, nil
}

// ClearResetToken removes any reset pair of a user
func (r *SQLUserRepository) ClearResetToken(ctx context.Context, userID int64) error {
	startTime := time.Now()

	query := r.db.Rebind(`
        UPDATE users
        SET reset_password_token = NULL, reset_password_expire = NULL
        WHERE id = ?`)

	_, err := r.db.ExecContext(ctx, query, userID)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	return nil
}

// PurgeExpiredResetTokens clears every reset pair that expired at or before now
func (r *SQLUserRepository) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	startTime := time.Now()

	query := r.db.Rebind(`
        UPDATE users
        SET reset_password_token = NULL, reset_password_expire = NULL
        WHERE reset_password_expire IS NOT NULL AND reset_password_expire <= ?`)

	result, err := r.db.ExecContext(ctx, query, now.UTC())

	utils.LogDBQuery(query, []interface{}{now}, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to purge expired reset tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// expectOneRow turns a zero-row update into a not-found error.
func expectOneRow(result sql.Result, resource string, id interface{}) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return utils.NewNotFoundError(resource, id)
	}
	return nil
}
