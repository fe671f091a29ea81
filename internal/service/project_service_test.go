package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-api/internal/cache"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

type projectFixture struct {
	svc      *ProjectService
	users    *MockUserRepository
	projects *MockProjectRepository
	images   *MockImageStore
	ada      *models.User
	bob      *models.User
}

func newProjectFixture(projectCache *cache.ProjectCache) *projectFixture {
	f := &projectFixture{
		users:  NewMockUserRepository(),
		images: &MockImageStore{},
	}
	f.projects = NewMockProjectRepository(f.users)
	f.svc = NewProjectService(f.projects, f.images, projectCache)
	f.ada = seedUser(f.users, "Ada", "ada@example.com", "secret1")
	f.bob = seedUser(f.users, "Bob", "bob@example.com", "secret1")
	return f
}

func sampleInput() *models.ProjectInput {
	return &models.ProjectInput{
		Title:        "Analytical Engine",
		Description:  "A general purpose computer",
		Technologies: []string{" Brass ", "Steam", ""},
	}
}

func TestProjectService_CreateProject(t *testing.T) {
	f := newProjectFixture(nil)
	ctx := context.Background()

	project, err := f.svc.CreateProject(ctx, f.ada.ID, sampleInput(), &ImageUpload{Filename: "engine.png", Content: strings.NewReader("png")})
	require.NoError(t, err)

	assert.NotZero(t, project.ID)
	assert.Equal(t, f.ada.ID, project.UserID)
	assert.Equal(t, []string{"Brass", "Steam"}, project.Technologies)
	assert.Equal(t, "/uploads/engine.png", project.Image)
	require.NotNil(t, project.Owner)
	assert.Equal(t, "Ada", project.Owner.Name)
}

func TestProjectService_CreateProject_DiscardsImageOnFailure(t *testing.T) {
	f := newProjectFixture(nil)
	f.projects.Err = errStoreDown

	_, err := f.svc.CreateProject(context.Background(), f.ada.ID, sampleInput(), &ImageUpload{Filename: "engine.png", Content: strings.NewReader("png")})
	require.Error(t, err)
	assert.Equal(t, []string{"/uploads/engine.png"}, f.images.Deleted)
}

func TestProjectService_CreateProject_InvalidImage(t *testing.T) {
	f := newProjectFixture(nil)
	f.images.SaveErr = utils.NewValidationError("image", "bad image")

	_, err := f.svc.CreateProject(context.Background(), f.ada.ID, sampleInput(), &ImageUpload{Filename: "x.txt", Content: strings.NewReader("x")})
	assert.True(t, utils.IsValidationError(err))

	projects, _ := f.svc.ListProjects(context.Background())
	assert.Empty(t, projects)
}

func TestProjectService_CreateProject_ImageReference(t *testing.T) {
	f := newProjectFixture(nil)
	ctx := context.Background()

	input := sampleInput()
	input.Image = "https://cdn.example.com/engine.png"
	project, err := f.svc.CreateProject(ctx, f.ada.ID, input, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/engine.png", project.Image)
	assert.Empty(t, f.images.Saved)

	// An uploaded file wins over a body reference
	input = sampleInput()
	input.Image = "https://cdn.example.com/ignored.png"
	project, err = f.svc.CreateProject(ctx, f.ada.ID, input, &ImageUpload{Filename: "engine.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/engine.png", project.Image)

	// Files kept by the store cannot be claimed by reference
	input = sampleInput()
	input.Image = "/uploads/someone-else.png"
	_, err = f.svc.CreateProject(ctx, f.bob.ID, input, nil)
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestProjectService_Ownership(t *testing.T) {
	f := newProjectFixture(nil)
	ctx := context.Background()

	project, err := f.svc.CreateProject(ctx, f.ada.ID, sampleInput(), nil)
	require.NoError(t, err)

	newTitle := "Difference Engine"
	update := &models.ProjectUpdate{Title: &newTitle}

	t.Run("Non-owner cannot update", func(t *testing.T) {
		_, err := f.svc.UpdateProject(ctx, f.bob.ID, project.ID, update, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, utils.ErrNotOwner)
		assert.Equal(t, 401, utils.StatusCode(err))

		stored, _ := f.svc.GetProject(ctx, project.ID)
		assert.Equal(t, "Analytical Engine", stored.Title)
	})

	t.Run("Non-owner cannot delete", func(t *testing.T) {
		err := f.svc.DeleteProject(ctx, f.bob.ID, project.ID)
		assert.ErrorIs(t, err, utils.ErrNotOwner)
	})

	t.Run("Owner can update", func(t *testing.T) {
		updated, err := f.svc.UpdateProject(ctx, f.ada.ID, project.ID, update, nil)
		require.NoError(t, err)
		assert.Equal(t, "Difference Engine", updated.Title)
		assert.Equal(t, "A general purpose computer", updated.Description)
		assert.Equal(t, f.ada.ID, updated.UserID)
	})

	t.Run("Owner can delete", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteProject(ctx, f.ada.ID, project.ID))

		_, err := f.svc.GetProject(ctx, project.ID)
		assert.True(t, utils.IsNotFoundError(err))
	})
}

func TestProjectService_UpdateProject(t *testing.T) {
	f := newProjectFixture(nil)
	ctx := context.Background()

	project, err := f.svc.CreateProject(ctx, f.ada.ID, sampleInput(), &ImageUpload{Filename: "old.png", Content: strings.NewReader("png")})
	require.NoError(t, err)

	t.Run("Empty technologies are rejected", func(t *testing.T) {
		_, err := f.svc.UpdateProject(ctx, f.ada.ID, project.ID, &models.ProjectUpdate{Technologies: []string{}}, nil)
		assert.True(t, utils.IsValidationError(err))
	})

	t.Run("New image replaces the old one", func(t *testing.T) {
		updated, err := f.svc.UpdateProject(ctx, f.ada.ID, project.ID,
			&models.ProjectUpdate{Technologies: []string{"Go"}},
			&ImageUpload{Filename: "new.png", Content: strings.NewReader("png")})
		require.NoError(t, err)
		assert.Equal(t, "/uploads/new.png", updated.Image)
		assert.Equal(t, []string{"Go"}, updated.Technologies)
		assert.Contains(t, f.images.Deleted, "/uploads/old.png")
	})

	t.Run("Body reference replaces the stored image", func(t *testing.T) {
		ref := "https://cdn.example.com/engine.png"
		updated, err := f.svc.UpdateProject(ctx, f.ada.ID, project.ID, &models.ProjectUpdate{Image: &ref}, nil)
		require.NoError(t, err)
		assert.Equal(t, ref, updated.Image)
		assert.Contains(t, f.images.Deleted, "/uploads/new.png")
	})

	t.Run("Stored image of another project is refused", func(t *testing.T) {
		ref := "/uploads/other.png"
		_, err := f.svc.UpdateProject(ctx, f.ada.ID, project.ID, &models.ProjectUpdate{Image: &ref}, nil)
		assert.True(t, utils.IsValidationError(err))

		stored, _ := f.svc.GetProject(ctx, project.ID)
		assert.Equal(t, "https://cdn.example.com/engine.png", stored.Image)
	})

	t.Run("Unknown project", func(t *testing.T) {
		_, err := f.svc.UpdateProject(ctx, f.ada.ID, 999, &models.ProjectUpdate{}, nil)
		require.Error(t, err)
		assert.True(t, utils.IsNotFoundError(err))
		assert.Equal(t, "Project not found", utils.ParseError(err).Message)
	})
}

func TestProjectService_DeleteProject_RemovesImage(t *testing.T) {
	f := newProjectFixture(nil)
	ctx := context.Background()

	project, err := f.svc.CreateProject(ctx, f.ada.ID, sampleInput(), &ImageUpload{Filename: "a.png", Content: strings.NewReader("png")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject(ctx, f.ada.ID, project.ID))
	assert.Equal(t, []string{"/uploads/a.png"}, f.images.Deleted)

	err = f.svc.DeleteProject(ctx, f.ada.ID, project.ID)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestProjectService_ListProjects_Cache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()

	f := newProjectFixture(cache.NewProjectCache(client, time.Minute, nil))
	ctx := context.Background()

	first, err := f.svc.CreateProject(ctx, f.ada.ID, sampleInput(), nil)
	require.NoError(t, err)

	projects, err := f.svc.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	// Served from cache while the store is down
	f.projects.Err = errStoreDown
	projects, err = f.svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	f.projects.Err = nil

	// Writes invalidate the list
	_, err = f.svc.CreateProject(ctx, f.bob.ID, sampleInput(), nil)
	require.NoError(t, err)

	projects, err = f.svc.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, f.bob.ID, projects[0].UserID, "newest first")
	assert.Equal(t, first.ID, projects[1].ID)

	_, err = f.svc.GetProject(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteProject(ctx, f.ada.ID, first.ID))

	_, err = f.svc.GetProject(ctx, first.ID)
	assert.True(t, utils.IsNotFoundError(err), "deleted project must not be served from cache")
}
