package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/cache"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/repository"
	"github.com/devfolio/portfolio-api/internal/storage"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// ImageUpload is an image file received with a project write.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// ProjectService handles project reads and owner-only writes
type ProjectService struct {
	projectRepo repository.ProjectRepository
	images      storage.ImageStore
	cache       *cache.ProjectCache
}

// NewProjectService creates a new ProjectService. cache may be nil.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	images storage.ImageStore,
	projectCache *cache.ProjectCache,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		images:      images,
		cache:       projectCache,
	}
}

// ListProjects returns every project, newest first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	if projects, ok := s.cache.GetList(ctx); ok {
		return projects, nil
	}

	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetList(ctx, projects)
	return projects, nil
}

// ListUserProjects returns the projects of one user, newest first.
func (s *ProjectService) ListUserProjects(ctx context.Context, userID int64) ([]*models.Project, error) {
	return s.projectRepo.ListByUser(ctx, userID)
}

// GetProject returns a project with its owner's name and avatar.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	if project, ok := s.cache.Get(ctx, id); ok {
		return project, nil
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, project)
	return project, nil
}

// CreateProject stores a project owned by userID. The image, if any, is
// saved first and removed again when the row cannot be written.
func (s *ProjectService) CreateProject(ctx context.Context, userID int64, input *models.ProjectInput, image *ImageUpload) (*models.Project, error) {
	project := models.NewProject(userID, input)
	project.Technologies = utils.CleanStrings(project.Technologies)

	if image != nil {
		ref, err := s.images.Save(ctx, image.Filename, image.Content)
		if err != nil {
			return nil, err
		}
		project.Image = ref
	} else if err := s.checkImageRef(project.Image, ""); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.discardImage(ctx, project.Image)
		return nil, err
	}

	s.cache.Invalidate(ctx)

	return s.reload(ctx, project)
}

// UpdateProject applies a partial update. Only the owner may update.
func (s *ProjectService) UpdateProject(ctx context.Context, userID, id int64, update *models.ProjectUpdate, image *ImageUpload) (*models.Project, error) {
	if update.ClearsTechnologies() {
		return nil, utils.NewValidationError("technologies", "Must contain at least 1 item(s)")
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.CheckOwnership(userID, project.UserID, "update"); err != nil {
		log.Warn().Int64("user_id", userID).Int64("project_id", id).Msg("Rejected project update by non-owner")
		return nil, err
	}

	if update.Technologies != nil {
		update.Technologies = utils.CleanStrings(update.Technologies)
	}

	previousImage := project.Image
	project.ApplyUpdate(update)

	if image != nil {
		ref, err := s.images.Save(ctx, image.Filename, image.Content)
		if err != nil {
			return nil, err
		}
		project.Image = ref
	} else if err := s.checkImageRef(project.Image, previousImage); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if image != nil {
			s.discardImage(ctx, project.Image)
		}
		return nil, err
	}

	if project.Image != previousImage {
		s.discardImage(ctx, previousImage)
	}

	s.cache.Invalidate(ctx, id)

	return s.reload(ctx, project)
}

// DeleteProject removes a project and its image. Only the owner may delete.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, id int64) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.CheckOwnership(userID, project.UserID, "delete"); err != nil {
		log.Warn().Int64("user_id", userID).Int64("project_id", id).Msg("Rejected project delete by non-owner")
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.discardImage(ctx, project.Image)
	s.cache.Invalidate(ctx, id)

	return nil
}

// InvalidateOwner drops the cached list and every cached project of userID.
// Project reads carry the owner's name and avatar, so a profile change makes
// them stale.
func (s *ProjectService) InvalidateOwner(ctx context.Context, userID int64) {
	if !s.cache.Enabled() {
		return
	}

	projects, err := s.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to list projects for cache invalidation")
	}

	ids := make([]int64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	s.cache.Invalidate(ctx, ids...)
}

// checkImageRef accepts an image reference sent in the body. References to
// files this server stored are refused unless the project already has it,
// since deleting the project would remove the file.
func (s *ProjectService) checkImageRef(ref, current string) error {
	if ref == "" || ref == current || s.images == nil {
		return nil
	}
	if s.images.Owns(ref) {
		return utils.NewValidationError(constants.ProjectImageFormName, constants.MsgStoredImageReference)
	}
	return nil
}

// reload reads a written project back so the owner fields are filled in.
func (s *ProjectService) reload(ctx context.Context, project *models.Project) (*models.Project, error) {
	stored, err := s.projectRepo.GetByID(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}
	return stored, nil
}

// discardImage removes an image nobody references any more. Failures are
// only logged; an orphaned file does not fail the request.
func (s *ProjectService) discardImage(ctx context.Context, ref string) {
	if ref == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		log.Warn().Err(err).Str("image", ref).Msg("Failed to delete project image")
	}
}
