package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/utils"
)

const argon2idPrefix = "$argon2id$"

var errMalformedDigest = errors.New("malformed password digest")

// PasswordHasher turns plaintext passwords into self-describing digests and
// checks candidates against them.
type PasswordHasher interface {
	// Hash returns a salted digest of plain.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches digest. Malformed digests never match.
	Verify(plain, digest string) bool
}

// PasswordConfig holds the parameters for password hashing
type PasswordConfig struct {
	Algorithm   string
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	BcryptCost  int
}

// DefaultPasswordConfig returns the default configuration for password hashing
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Algorithm:   constants.HashAlgorithmArgon2id,
		Memory:      constants.DefaultPasswordHashMemory,
		Iterations:  constants.DefaultPasswordHashIterations,
		Parallelism: constants.DefaultPasswordHashParallelism,
		SaltLength:  constants.DefaultPasswordHashSaltLength,
		KeyLength:   constants.DefaultPasswordHashKeyLength,
		BcryptCost:  constants.DefaultBcryptCost,
	}
}

// ConfigFromAppConfig creates a password config from the application config
func ConfigFromAppConfig(cfg *config.AppConfig) *PasswordConfig {
	return &PasswordConfig{
		Algorithm:   cfg.PasswordHash.Algorithm,
		Memory:      cfg.PasswordHash.Memory,
		Iterations:  cfg.PasswordHash.Iterations,
		Parallelism: cfg.PasswordHash.Parallelism,
		SaltLength:  cfg.PasswordHash.SaltLength,
		KeyLength:   cfg.PasswordHash.KeyLength,
		BcryptCost:  cfg.PasswordHash.BcryptCost,
	}
}

// Hasher implements PasswordHasher with argon2id or bcrypt. New digests use
// the configured algorithm; Verify accepts either, picked by digest prefix.
type Hasher struct {
	cfg *PasswordConfig
}

// NewPasswordHasher creates a Hasher. A nil config means DefaultPasswordConfig.
func NewPasswordHasher(cfg *PasswordConfig) *Hasher {
	if cfg == nil {
		cfg = DefaultPasswordConfig()
	}
	return &Hasher{cfg: cfg}
}

// Hash generates a digest of the provided password.
//
// Argon2id digests use the PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<key>
//
// with unpadded standard base64 for salt and key.
func (h *Hasher) Hash(plain string) (string, error) {
	if h.cfg.Algorithm == constants.HashAlgorithmBcrypt {
		return h.hashBcrypt(plain)
	}
	return h.hashArgon2id(plain)
}

func (h *Hasher) hashArgon2id(plain string) (string, error) {
	salt, err := GenerateRandomBytes(h.cfg.SaltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, h.cfg.Iterations, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		h.cfg.Memory,
		h.cfg.Iterations,
		h.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Hasher) hashBcrypt(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", utils.NewValidationError("password", "Password must be at most 72 bytes long")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify compares a password with a digest produced by either algorithm
func (h *Hasher) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argon2idPrefix):
		ok, err := verifyArgon2id(plain, digest)
		return err == nil && ok
	case isBcryptDigest(digest):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
	default:
		return false
	}
}

func isBcryptDigest(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

// verifyArgon2id recomputes the key with the parameters recorded in the
// digest, so tuning the config does not invalidate stored passwords.
func verifyArgon2id(plain, digest string) (bool, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, errMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errMalformedDigest
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, errMalformedDigest
	}
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return false, errMalformedDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false, fmt.Errorf("failed to decode hash: %w", errMalformedDigest)
	}

	comparison := argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, uint32(len(key)))

	// Use constant-time comparison to avoid timing attacks
	return subtle.ConstantTimeCompare(key, comparison) == 1, nil
}

// GenerateRandomBytes generates cryptographically secure random bytes
func GenerateRandomBytes(length uint32) ([]byte, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
