// Package handlers provides HTTP request handlers and service interfaces for the portfolio API.
// This file defines service interfaces related to the signed-in user and
// public portfolios, establishing clear contracts between handlers and
// service implementations.
package handlers

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/models"
)

// UserServiceInterface defines the methods required from UserService.
// This interface encapsulates user management operations, allowing handlers
// to interact with user data without depending on specific implementations.
type UserServiceInterface interface {
	// UpdateProfile applies the provided profile fields.
	//
	// Parameters:
	//   - ctx: The context for the operation
	//   - id: The unique identifier of the user to update
	//   - update: The fields to change; nil fields are left alone
	//
	// Returns:
	//   - The updated, sanitized user
	//   - An error if the update fails (e.g., the new email is taken)
	UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error)

	// ChangePassword replaces the password after checking the current one.
	//
	// Parameters:
	//   - ctx: The context for the operation
	//   - id: The unique identifier of the user
	//   - change: Current and new password
	//
	// Returns:
	//   - A fresh bearer token
	//   - An unauthorized error if the current password is wrong
	ChangePassword(ctx context.Context, id int64, change *models.PasswordChange) (string, error)
}

// PortfolioServiceInterface combines a profile with its projects.
type PortfolioServiceInterface interface {
	GetPortfolio(ctx context.Context, userID int64) (*models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, userID int64, update *models.ProfileUpdate) (*models.Portfolio, error)
}
