package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// PortfolioHandler serves a profile together with its projects
type PortfolioHandler struct {
	portfolioService PortfolioServiceInterface
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService PortfolioServiceInterface) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// GetPortfolio handles GET /api/portfolio for the signed-in user
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.List(w, http.StatusOK, portfolio, len(portfolio.Projects))
}

// UpdatePortfolio handles PUT /api/portfolio. The body is a profile update.
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	var update models.ProfileUpdate
	if err := utils.DecodeAndValidate(r, &update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(r.Context(), userID, &update)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, portfolio)
}

// GetPublicPortfolio handles GET /api/users/{id}/portfolio. Anyone may call
// it, so the email address is left out.
func (h *PortfolioHandler) GetPublicPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.ParseID(chi.URLParam(r, constants.ParamID))
	if !ok {
		utils.NotFound(w, constants.MsgUserNotFound)
		return
	}

	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.List(w, http.StatusOK, portfolio.Public(), len(portfolio.Projects))
}
