package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// Claims represents the claims in a bearer token
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 bearer tokens
type JWTService struct {
	Config *config.JWTSettings
	now    func() time.Time
}

// NewJWTService creates a new JWTService instance
func NewJWTService(config *config.JWTSettings) *JWTService {
	return &JWTService{
		Config: config,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and expiry checks.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// GetConfig returns the JWT settings, falling back to defaults when unset
func (s *JWTService) GetConfig() *config.JWTSettings {
	if s.Config == nil {
		return &config.JWTSettings{
			Expiry: constants.DefaultJWTExpiry,
			Issuer: constants.DefaultJWTIssuer,
		}
	}
	return s.Config
}

func (s *JWTService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Issue generates a signed token for userID valid for the configured lifetime.
//
// Parameters:
//   - userID: the authenticated user's ID
//
// Returns:
//   - the compact serialized token
//   - an error if signing fails
func (s *JWTService) Issue(userID int64) (string, error) {
	cfg := s.GetConfig()
	now := s.clock()

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Validate checks signature, algorithm, issuer and lifetime of a token and
// returns the user ID it was issued for. Every failure yields the same
// invalid-token error.
func (s *JWTService) Validate(tokenString string) (int64, error) {
	cfg := s.GetConfig()

	// Time-based claims are checked below against the service clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, utils.NewInvalidTokenError()
	}

	now := s.clock()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyNotBefore(now, false) {
		return 0, utils.NewInvalidTokenError()
	}
	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return 0, utils.NewInvalidTokenError()
	}
	if claims.UserID <= 0 {
		return 0, utils.NewInvalidTokenError()
	}

	return claims.UserID, nil
}
