package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// PasswordResetHandler serves the unauthenticated forgot/reset password routes.
type PasswordResetHandler struct {
	resetService PasswordResetServiceInterface
}

// NewPasswordResetHandler creates a new PasswordResetHandler.
func NewPasswordResetHandler(resetService PasswordResetServiceInterface) *PasswordResetHandler {
	if resetService == nil {
		panic("resetService cannot be nil")
	}
	return &PasswordResetHandler{resetService: resetService}
}

// ForgotPassword handles POST /api/auth/forgot-password.
// The answer is the same whether or not the email belongs to an account.
func (h *PasswordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.resetService.ForgotPassword(r.Context(), req.Email); err != nil {
		log.Error().Err(err).Str("email", utils.MaskEmail(req.Email)).Msg("Failed to start password reset")
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Message(w, http.StatusOK, constants.MsgResetEmailSent)
}

// ResetPassword handles POST /api/auth/reset-password.
// Any problem with the token itself is reported as one generic message.
func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		appErr := utils.ParseError(err)
		if appErr.Field == "token" {
			appErr = utils.NewInvalidResetTokenError()
		}
		utils.ErrorFromAppError(w, appErr)
		return
	}

	token, err := h.resetService.ResetPassword(r.Context(), &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.TokenResponse(w, http.StatusOK, token, nil, constants.MsgPasswordReset)
}
