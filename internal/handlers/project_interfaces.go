package handlers

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/service"
)

// ProjectServiceInterface defines the project operations used by ProjectHandler.
// Writes take the requesting user's ID; ownership is enforced by the service.
type ProjectServiceInterface interface {
	ListProjects(ctx context.Context) ([]*models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, userID int64, input *models.ProjectInput, image *service.ImageUpload) (*models.Project, error)
	UpdateProject(ctx context.Context, userID, id int64, update *models.ProjectUpdate, image *service.ImageUpload) (*models.Project, error)
	DeleteProject(ctx context.Context, userID, id int64) error
}
