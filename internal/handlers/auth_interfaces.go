// Package handlers provides HTTP request handlers for the portfolio API.
package handlers

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/models"
)

// AuthServiceInterface defines the methods required from the authentication service.
// This interface is used by the auth handlers to interact with the authentication business logic
// without being tightly coupled to the implementation.
type AuthServiceInterface interface {
	// Signup registers a new user and signs them in.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - reg: Validated registration data (name, email, password)
	//
	// Returns:
	//   - The newly created, sanitized user
	//   - A bearer token for the new user
	//   - An error if registration fails (e.g., duplicate email)
	Signup(ctx context.Context, reg *models.UserRegistration) (*models.User, string, error)

	// Signin authenticates a user with the provided credentials.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - creds: Email and password
	//
	// Returns:
	//   - The authenticated user
	//   - A bearer token
	//   - An invalid credentials error for unknown emails and wrong passwords alike
	Signin(ctx context.Context, creds *models.UserCredentials) (*models.User, string, error)
}

// PasswordResetServiceInterface defines the forgot/reset password flow.
type PasswordResetServiceInterface interface {
	// ForgotPassword emails a reset link if the address belongs to an account.
	// It returns nil for unknown addresses.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset token, sets the new password and returns a bearer token.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) (string, error)
}
