package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/utils"
)

func testJWTConfig() *config.JWTSettings {
	return &config.JWTSettings{
		Secret: "test-secret",
		Expiry: 30 * 24 * time.Hour,
		Issuer: "test-issuer",
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := testJWTConfig()

	service := auth.NewJWTService(cfg)

	if service == nil {
		t.Fatal("Expected service to be created, got nil")
	}

	if service.Config != cfg {
		t.Errorf("Expected Config to be %v, got %v", cfg, service.Config)
	}
}

func TestGetConfig(t *testing.T) {
	// Test with nil config (should use defaults)
	service := &auth.JWTService{Config: nil}
	cfg := service.GetConfig()

	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}

	if cfg.Expiry != 30*24*time.Hour {
		t.Errorf("Expected default Expiry to be 720h, got %v", cfg.Expiry)
	}

	if cfg.Issuer != "portfolio-api" {
		t.Errorf("Expected default Issuer to be 'portfolio-api', got %v", cfg.Issuer)
	}
}

func TestIssueAndValidate(t *testing.T) {
	service := auth.NewJWTService(testJWTConfig())

	token, err := service.Issue(123)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	userID, err := service.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if userID != 123 {
		t.Errorf("Expected UserID %d, got %d", 123, userID)
	}
}

func TestIssueClaims(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	service := auth.NewJWTService(testJWTConfig()).WithClock(func() time.Time { return now })

	token, err := service.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected id claim 42, got %d", claims.UserID)
	}
	if claims.Subject != "42" {
		t.Errorf("Expected Subject '42', got %s", claims.Subject)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("Expected Issuer 'test-issuer', got %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("Expected a token ID")
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Errorf("Expected expiry %v, got %v", now.Add(30*24*time.Hour), claims.ExpiresAt.Time)
	}
}

func TestTwoTokensDiffer(t *testing.T) {
	service := auth.NewJWTService(testJWTConfig())

	first, _ := service.Issue(1)
	second, _ := service.Issue(1)

	if first == second {
		t.Error("Expected tokens with distinct IDs")
	}
}

func TestValidateExpired(t *testing.T) {
	now := time.Now()
	clock := now
	service := auth.NewJWTService(testJWTConfig()).WithClock(func() time.Time { return clock })

	token, err := service.Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	clock = now.Add(30*24*time.Hour - time.Minute)
	if _, err := service.Validate(token); err != nil {
		t.Errorf("Expected token to be valid just before expiry, got %v", err)
	}

	clock = now.Add(30*24*time.Hour + time.Second)
	_, err = service.Validate(token)
	if !errors.Is(err, utils.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestValidateInvalidTokens(t *testing.T) {
	cfg := testJWTConfig()
	service := auth.NewJWTService(cfg)

	valid, err := service.Issue(5)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherSecret, _ := auth.NewJWTService(&config.JWTSettings{
		Secret: "another-secret",
		Expiry: time.Hour,
		Issuer: cfg.Issuer,
	}).Issue(5)

	otherIssuer, _ := auth.NewJWTService(&config.JWTSettings{
		Secret: cfg.Secret,
		Expiry: time.Hour,
		Issuer: "someone-else",
	}).Issue(5)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(cfg.Secret))

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	missingID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(cfg.Secret))

	missingExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID:           5,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: cfg.Issuer},
	}).SignedString([]byte(cfg.Secret))

	notYetValid, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
	}).SignedString([]byte(cfg.Secret))

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"Empty", ""},
		{"Garbage", "not.a.token"},
		{"Tampered payload", tampered},
		{"Other secret", otherSecret},
		{"Other issuer", otherIssuer},
		{"HS512", hs512},
		{"Alg none", none},
		{"Missing id", missingID},
		{"Missing expiry", missingExpiry},
		{"Not yet valid", notYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := service.Validate(tt.token)
			if !errors.Is(err, utils.ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
			if userID != 0 {
				t.Errorf("Expected zero user ID, got %d", userID)
			}
		})
	}
}
