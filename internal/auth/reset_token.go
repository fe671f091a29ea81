package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// ResetTokenStore persists reset token digests on the user row.
type ResetTokenStore interface {
	// SetResetToken stores the digest and its expiry for userID, replacing any previous pair.
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expire time.Time) error

	// GetUserIDByResetToken finds the user holding tokenHash with an expiry after now.
	// It returns utils.ErrNotFound when there is none.
	GetUserIDByResetToken(ctx context.Context, tokenHash string, now time.Time) (int64, error)

	// ConsumeResetToken clears the pair in one conditional update when the
	// stored digest equals tokenHash and has not expired at now. A non-empty
	// newPasswordHash is written by the same statement.
	ConsumeResetToken(ctx context.Context, userID int64, tokenHash string, now time.Time, newPasswordHash string) (bool, error)

	// ClearResetToken clears the pair unconditionally.
	ClearResetToken(ctx context.Context, userID int64) error

	// PurgeExpiredResetTokens clears every pair that expired before now.
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ResetTokenManager hands out single-use password reset tokens. Only the
// SHA-256 digest of a token is ever stored.
type ResetTokenManager struct {
	store ResetTokenStore
	ttl   time.Duration
	now   func() time.Time
}

// NewResetTokenManager creates a manager. A non-positive ttl means the default window.
func NewResetTokenManager(store ResetTokenStore, ttl time.Duration) *ResetTokenManager {
	if ttl <= 0 {
		ttl = constants.DefaultResetTokenTTL
	}
	return &ResetTokenManager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock replaces the time source, used for expiry in tests.
func (m *ResetTokenManager) WithClock(now func() time.Time) *ResetTokenManager {
	m.now = now
	return m
}

// HashResetToken returns the hex SHA-256 digest stored for a plain token.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Generate creates a fresh token without storing it.
//
// Returns:
//   - plain: hex encoding of 20 random bytes, handed to the user once
//   - hash: the digest to persist
//   - expiry: now plus the reset window
func (m *ResetTokenManager) Generate() (plain, hash string, expiry time.Time, err error) {
	raw, err := GenerateRandomBytes(constants.ResetTokenBytes)
	if err != nil {
		return "", "", time.Time{}, err
	}

	plain = hex.EncodeToString(raw)
	return plain, HashResetToken(plain), m.now().Add(m.ttl), nil
}

// Issue generates a token for userID and stores its digest, replacing any
// pending one.
func (m *ResetTokenManager) Issue(ctx context.Context, userID int64) (string, error) {
	plain, hash, expiry, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := m.store.SetResetToken(ctx, userID, hash, expiry); err != nil {
		return "", err
	}

	return plain, nil
}

// Lookup resolves the user a presented token belongs to. Unknown and expired
// tokens are reported the same way.
func (m *ResetTokenManager) Lookup(ctx context.Context, presented string) (int64, bool, error) {
	if presented == "" {
		return 0, false, nil
	}

	userID, err := m.store.GetUserIDByResetToken(ctx, HashResetToken(presented), m.now())
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	return userID, true, nil
}

// Consume clears the pending token of userID if presented matches and has
// not expired. It succeeds at most once per token.
func (m *ResetTokenManager) Consume(ctx context.Context, userID int64, presented string) (bool, error) {
	return m.ConsumeWithPassword(ctx, userID, presented, "")
}

// ConsumeWithPassword behaves like Consume and stores newPasswordHash in the
// same update, so a token can never be spent without the password changing.
func (m *ResetTokenManager) ConsumeWithPassword(ctx context.Context, userID int64, presented, newPasswordHash string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	return m.store.ConsumeResetToken(ctx, userID, HashResetToken(presented), m.now(), newPasswordHash)
}

// Revoke drops any pending token of userID.
func (m *ResetTokenManager) Revoke(ctx context.Context, userID int64) error {
	return m.store.ClearResetToken(ctx, userID)
}

// PurgeExpired clears all expired tokens and returns how many were removed.
func (m *ResetTokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.store.PurgeExpiredResetTokens(ctx, m.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Purged expired password reset tokens")
	}
	return n, nil
}
