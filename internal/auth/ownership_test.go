package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/utils"
)

func TestCheckOwnership(t *testing.T) {
	if err := auth.CheckOwnership(1, 1, "update"); err != nil {
		t.Errorf("Expected owner to pass, got %v", err)
	}

	tests := []struct {
		name        string
		requesterID int64
		ownerID     int64
		action      string
		wantMessage string
	}{
		{"Other user update", 2, 1, "update", "Not authorized to update this project"},
		{"Other user delete", 2, 1, "delete", "Not authorized to delete this project"},
		{"Anonymous", 0, 0, "update", "Not authorized to update this project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.CheckOwnership(tt.requesterID, tt.ownerID, tt.action)
			if !errors.Is(err, utils.ErrNotOwner) {
				t.Fatalf("Expected ErrNotOwner, got %v", err)
			}

			var appErr *utils.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected *utils.AppError, got %T", err)
			}
			if appErr.StatusCode != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", appErr.StatusCode)
			}
			if appErr.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, appErr.Message)
			}
		})
	}
}
