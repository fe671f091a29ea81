package service

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// PortfolioService combines a user's profile with their projects
type PortfolioService struct {
	users    *UserService
	projects *ProjectService
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(users *UserService, projects *ProjectService) *PortfolioService {
	return &PortfolioService{users: users, projects: projects}
}

// GetPortfolio returns the portfolio of the given user. A missing user is
// reported as "User not found".
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID int64) (*models.Portfolio, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.NewNotFoundError("User", userID)
		}
		return nil, err
	}

	return s.assemble(ctx, user)
}

// UpdatePortfolio updates the profile part of the portfolio and returns the
// whole portfolio.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, userID int64, update *models.ProfileUpdate) (*models.Portfolio, error) {
	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, user)
}

func (s *PortfolioService) assemble(ctx context.Context, user *models.User) (*models.Portfolio, error) {
	projects, err := s.projects.ListUserProjects(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []*models.Project{}
	}

	return &models.Portfolio{User: user, Projects: projects}, nil
}
