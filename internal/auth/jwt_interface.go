package auth

// TokenIssuer creates bearer tokens for authenticated users.
type TokenIssuer interface {
	// Issue generates a signed token for userID.
	Issue(userID int64) (string, error)
}

// TokenValidator defines the interface for bearer token validation
type TokenValidator interface {
	// Validate returns the user ID carried by a valid token.
	Validate(token string) (int64, error)
}

// Ensure JWTService satisfies both sides.
var (
	_ TokenIssuer    = (*JWTService)(nil)
	_ TokenValidator = (*JWTService)(nil)
)
