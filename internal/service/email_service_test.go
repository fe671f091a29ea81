package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-api/internal/config"
)

// TestNewEmailSender tests provider selection
func TestNewEmailSender(t *testing.T) {
	t.Run("Log provider", func(t *testing.T) {
		sender, err := NewEmailSender(&config.EmailSettings{Provider: "log"})
		assert.NoError(t, err)
		assert.IsType(t, &LogEmailService{}, sender)
	})

	t.Run("SendGrid provider", func(t *testing.T) {
		sender, err := NewEmailSender(&config.EmailSettings{
			Provider:       "sendgrid",
			SendGridAPIKey: "test-api-key",
			FromAddress:    "noreply@example.com",
		})
		assert.NoError(t, err)
		assert.IsType(t, &SendGridEmailService{}, sender)
	})

	t.Run("SendGrid without key", func(t *testing.T) {
		sender, err := NewEmailSender(&config.EmailSettings{Provider: "sendgrid"})
		assert.Error(t, err)
		assert.Nil(t, sender)
	})

	t.Run("Unknown provider", func(t *testing.T) {
		_, err := NewEmailSender(&config.EmailSettings{Provider: "smtp"})
		assert.Error(t, err)
	})
}

func TestResetURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:3000/reset-password?token=abc123",
		ResetURL("http://localhost:3000", "abc123"))
}

// TestSendGridEmailService_SendPasswordResetEmail points the SendGrid client at a test server
func TestSendGridEmailService_SendPasswordResetEmail(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "Accepted", statusCode: http.StatusAccepted, wantErr: false},
		{name: "Rejected", statusCode: http.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload map[string]interface{}
			var authHeader string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				authHeader = r.Header.Get("Authorization")
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &payload)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			svc, err := NewSendGridEmailService(&config.EmailSettings{
				SendGridAPIKey: "test-api-key",
				FromAddress:    "noreply@example.com",
				FromName:       "Portfolio",
			})
			require.NoError(t, err)
			svc.client.BaseURL = server.URL + "/v3/mail/send"

			err = svc.SendPasswordResetEmail(context.Background(), "ada@example.com", "Ada",
				"http://localhost:3000/reset-password?token=abc")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, "Bearer test-api-key", authHeader)
			require.NotNil(t, payload)
			assert.Equal(t, resetEmailSubject, payload["subject"])
			from := payload["from"].(map[string]interface{})
			assert.Equal(t, "noreply@example.com", from["email"])
		})
	}
}

func TestLogEmailService(t *testing.T) {
	svc := &LogEmailService{}
	assert.NoError(t, svc.SendPasswordResetEmail(context.Background(), "ada@example.com", "Ada", "http://x/reset-password?token=1"))
}
