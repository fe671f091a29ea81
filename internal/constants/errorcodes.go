// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines the client-facing messages and the database
// error codes the error layer recognizes. Messages stay generic on purpose:
// server failures are described in logs, never in responses.
package constants

// User-Facing Error Messages define standardized messages that can be safely presented to users.
const (
	// MsgServerError is the only message clients see for unexpected failures.
	MsgServerError = "Server error"

	// MsgNotAuthorized is returned for missing, malformed or invalid bearer tokens,
	// and for tokens whose user no longer exists.
	MsgNotAuthorized = "Not authorized to access this route"

	// MsgInvalidCredentials is returned for unknown emails and wrong passwords alike.
	MsgInvalidCredentials = "Invalid credentials"

	// MsgWrongCurrentPassword is returned when a password change presents the wrong current password.
	MsgWrongCurrentPassword = "Current password is incorrect"

	// MsgInvalidResetToken covers unknown, expired and already used reset tokens.
	MsgInvalidResetToken = "Invalid or expired token"

	// MsgProjectNotFound is returned for unknown or malformed project identifiers.
	MsgProjectNotFound = "Project not found"

	// MsgUserNotFound is returned when a public portfolio owner does not exist.
	MsgUserNotFound = "User not found"

	// MsgEmailTaken is returned when signup or a profile update hits the unique email constraint.
	MsgEmailTaken = "User with this email already exists"

	// MsgRateLimitExceeded is returned with 429 responses.
	MsgRateLimitExceeded = "Too many requests, please try again later"

	// MsgRequestBodyTooLarge indicates that the request payload exceeds size limits.
	MsgRequestBodyTooLarge = "Request body too large"

	// MsgEmptyRequestBody indicates that a request body was expected but not provided.
	MsgEmptyRequestBody = "Request body must not be empty"

	// MsgMalformedJSON indicates that the request body contains invalid JSON.
	MsgMalformedJSON = "Request body contains malformed JSON"

	// MsgInvalidImage is returned when an uploaded file is not an accepted image type.
	MsgInvalidImage = "Please upload an image file (jpeg, png, gif or webp)"

	// MsgStoredImageReference is returned when a body names an uploaded image instead of sending the file.
	MsgStoredImageReference = "Uploaded images must be sent as a file"

	// MsgMethodNotAllowed indicates that the HTTP method is not supported for the endpoint.
	MsgMethodNotAllowed = "This method is not allowed for this resource"

	// MsgRouteNotFound is returned for unknown routes.
	MsgRouteNotFound = "Route not found"

	// MsgServiceUnhealthy is returned by the health check when the database is unreachable.
	MsgServiceUnhealthy = "Service is not healthy"
)

// Success Messages confirm completed actions.
const (
	// MsgResetEmailSent is the single forgot-password answer, whether or not the email exists.
	MsgResetEmailSent = "If an account with that email exists, a password reset link has been sent"

	// MsgPasswordChanged confirms a password change through the authenticated route.
	MsgPasswordChanged = "Password updated successfully"

	// MsgPasswordReset confirms a password change through a reset token.
	MsgPasswordReset = "Password has been reset successfully"
)

// Database Error Codes identify constraint violations by driver.
const (
	// PGUniqueViolation is the PostgreSQL error code for unique constraint violations.
	PGUniqueViolation = "23505"

	// PGForeignKeyViolation is the PostgreSQL error code for foreign key violations.
	PGForeignKeyViolation = "23503"

	// PGNotNullViolation is the PostgreSQL error code for not-null constraint violations.
	PGNotNullViolation = "23502"

	// MySQLDuplicateEntry is the MySQL error number for duplicate unique keys.
	MySQLDuplicateEntry = 1062
)

// Logger Constants define values used for structured logging.
const (
	// LogCategoryAuth is the log category for authentication-related events.
	LogCategoryAuth = "auth"

	// LogEventLogin is the log event type for user signin.
	LogEventLogin = "login"

	// LogEventRegister is the log event type for user signup.
	LogEventRegister = "register"

	// LogEventPasswordChange is the log event type for authenticated password changes.
	LogEventPasswordChange = "password_change"

	// LogEventPasswordResetRequest is the log event type for forgot-password requests.
	LogEventPasswordResetRequest = "password_reset_request"

	// LogEventPasswordReset is the log event type for completed resets.
	LogEventPasswordReset = "password_reset"

	// LogEventProfileUpdate is the log event type for profile updates.
	LogEventProfileUpdate = "profile_update"

	// LogRedactedValue is used to replace sensitive values in logs.
	LogRedactedValue = "[REDACTED]"
)
