// Package utils provides utility functions and helpers for the application.
// This file implements the JSON envelope every endpoint answers with:
//
//	{ "success": bool, "data"?: any, "message"?: string, "count"?: int,
//	  "token"?: string, "user"?: any, "errors"?: {field: message} }
//
// Handlers never write bodies directly; they go through these helpers so the
// envelope stays identical across the API.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/constants"
)

// Response represents a standardized API response.
type Response struct {
	Success bool              `json:"success"`           // Whether the request was successful
	Data    interface{}       `json:"data,omitempty"`    // Payload for reads and writes
	Message string            `json:"message,omitempty"` // Human-readable status or error text
	Count   *int              `json:"count,omitempty"`   // Number of items for list responses
	Token   string            `json:"token,omitempty"`   // Bearer token issued by auth endpoints
	User    interface{}       `json:"user,omitempty"`    // User returned alongside a token
	Errors  map[string]string `json:"errors,omitempty"`  // Per-field validation messages
}

// JSON sends a JSON response with the given status code and data.
// This is the primary function for sending successful responses.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The data to include in the response
//
// The function automatically sets the success flag based on the status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	})
}

// List sends a collection together with its item count.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The collection to include in the response
//   - count: The number of items in data
func List(w http.ResponseWriter, statusCode int, data interface{}, count int) {
	SendJSON(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
		Count:   &count,
	})
}

// Message sends a response carrying only a status message.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - message: The message to include in the response
func Message(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Message: message,
	})
}

// TokenResponse sends a freshly issued bearer token. User and message are
// optional and omitted from the body when empty.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - token: The signed bearer token
//   - user: The sanitized user the token belongs to, or nil
//   - message: An optional confirmation message
func TokenResponse(w http.ResponseWriter, statusCode int, token string, user interface{}, message string) {
	SendJSON(w, statusCode, Response{
		Success: true,
		Token:   token,
		User:    user,
		Message: message,
	})
}

// Error sends an error response with the given status code and message.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - message: A human-readable error message
//   - errs: Per-field validation messages, or nil
func Error(w http.ResponseWriter, statusCode int, message string, errs map[string]string) {
	SendJSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// ErrorFromAppError sends an error response based on an AppError.
// Server errors are logged with their developer information; the client
// only ever receives the generic message.
//
// Parameters:
//   - w: The HTTP response writer
//   - err: The application error
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	if err == nil {
		err = NewInternalServerError(nil)
	}

	if err.StatusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err.Err).
			Str("dev_info", err.DevInfo).
			Int("status", err.StatusCode).
			Msg("Request failed with server error")
		Error(w, err.StatusCode, constants.MsgServerError, nil)
		return
	}

	var details map[string]string
	if len(err.Details) > 0 {
		details = make(map[string]string, len(err.Details))
		for field, msg := range err.Details {
			if s, ok := msg.(string); ok {
				details[field] = s
			}
		}
	} else if err.Field != "" {
		details = map[string]string{err.Field: err.Message}
	}

	Error(w, err.StatusCode, err.Message, details)
}

// SendJSON is a helper function to send JSON data with proper headers.
// This handles JSON marshaling and error handling for all response types.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The data to marshal to JSON and send
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	// Marshal before writing headers so a failure can still change the status
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte(`{"success":false,"message":"Server error"}`)); err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		// Log write errors but don't try to recover
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// Unauthorized sends a 401 Unauthorized response with the given message.
//
// Parameters:
//   - w: The HTTP response writer
//   - message: A human-readable error message (falls back to a default message if empty)
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgNotAuthorized
	}
	Error(w, http.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 Not Found response with the given message.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgRouteNotFound
	}
	Error(w, http.StatusNotFound, message, nil)
}

// MethodNotAllowed sends a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, constants.MsgMethodNotAllowed, nil)
}

// TooManyRequests sends a 429 response.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, constants.MsgRateLimitExceeded, nil)
}
