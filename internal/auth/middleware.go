// Package auth provides authentication and authorization functionality for the portfolio API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
// Using a custom type instead of string or int provides type safety for context values.
type ContextKey string

// Context keys for storing authenticated user information.
const (
	// UserIDContextKey is the context key for storing the authenticated user ID.
	UserIDContextKey ContextKey = constants.UserIDContextKey

	// UserContextKey is the context key for storing the resolved user record.
	UserContextKey ContextKey = constants.UserContextKey
)

// UserResolver loads the user a token was issued for.
type UserResolver interface {
	// GetByID returns the user or an error wrapping utils.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
//
// Parameters:
//   - r: The HTTP request to inspect
//
// Returns:
//   - the token
//   - false if the header is missing, uses another scheme, or carries an empty token
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerTokenPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerTokenPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// RequireUser is a middleware that only admits requests carrying a valid
// bearer token whose user still exists. The user ID and the user record are
// attached to the request context for downstream handlers.
//
// Parameters:
//   - validator: validates tokens and yields the user ID
//   - users: resolves the user ID to a stored user
//
// Returns:
//   - A middleware function that requires authentication
func RequireUser(validator TokenValidator, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetReqID(r.Context())

			token, ok := BearerToken(r)
			if !ok {
				rejectRequest(w, r, requestID, "missing bearer token")
				return
			}

			userID, err := validator.Validate(token)
			if err != nil {
				rejectRequest(w, r, requestID, "invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, utils.ErrNotFound) {
					rejectRequest(w, r, requestID, "user no longer exists")
					return
				}
				utils.ErrorFromAppError(w, utils.NewInternalServerError(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, user.ID)
			ctx = context.WithValue(ctx, UserContextKey, user)

			log.Debug().
				Int64(constants.UserIDContextKey, user.ID).
				Str(constants.RequestIDContextKey, requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectRequest(w http.ResponseWriter, r *http.Request, requestID, reason string) {
	log.Info().
		Str(constants.RequestIDContextKey, requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("reason", reason).
		Msg("Authentication failed")

	utils.Unauthorized(w, constants.MsgNotAuthorized)
}

// WithUser returns a copy of ctx carrying an authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, user.ID)
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserID extracts the user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
//
// Parameters:
//   - r: The HTTP request containing the context
//
// Returns:
//   - The user ID if present
//   - A boolean indicating if the user ID was found
func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(int64)
	return userID, ok
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
