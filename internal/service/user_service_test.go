package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-api/internal/cache"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/utils"
)

func strPtr(s string) *string { return &s }

func newTestUserService() (*UserService, *MockUserRepository) {
	repo := NewMockUserRepository()
	return NewUserService(repo, newTestHasher(), newTestJWTService(), nil, nil), repo
}

func TestUserService_GetUserByID(t *testing.T) {
	svc, repo := newTestUserService()
	seeded := seedUser(repo, "Ada", "ada@example.com", "secret1")

	user, err := svc.GetUserByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.GetUserByID(context.Background(), 999)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()
	ada := seedUser(repo, "Ada", "ada@example.com", "secret1")
	seedUser(repo, "Bob", "bob@example.com", "secret1")

	t.Run("Partial update keeps other fields", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, ada.ID, &models.ProfileUpdate{
			Bio:    strPtr("Mathematician"),
			GitHub: strPtr("https://github.com/ada"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "Mathematician", user.Bio)
		assert.Equal(t, "https://github.com/ada", user.GitHub)
	})

	t.Run("Email is normalized", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, ada.ID, &models.ProfileUpdate{Email: strPtr(" Ada.L@Example.com ")})
		require.NoError(t, err)
		assert.Equal(t, "ada.l@example.com", user.Email)
	})

	t.Run("Email of another account is rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, ada.ID, &models.ProfileUpdate{Email: strPtr("bob@example.com")})
		require.Error(t, err)
		assert.True(t, utils.IsDuplicateError(err))
		assert.Equal(t, constants.MsgEmailTaken, utils.ParseError(err).Message)
	})

	t.Run("Clearing the avatar restores the default", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, ada.ID, &models.ProfileUpdate{Avatar: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultAvatar, user.Avatar)
	})

	t.Run("Password is untouched", func(t *testing.T) {
		stored, err := repo.GetByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.True(t, newTestHasher().Verify("secret1", stored.PasswordHash))
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, 999, &models.ProfileUpdate{Bio: strPtr("x")})
		assert.True(t, utils.IsNotFoundError(err))
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()
	ada := seedUser(repo, "Ada", "ada@example.com", "secret1")

	t.Run("Wrong current password", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, ada.ID, &models.PasswordChange{CurrentPassword: "nope123", NewPassword: "newpass1"})
		require.Error(t, err)
		assert.Equal(t, 401, utils.StatusCode(err))
		assert.Equal(t, constants.MsgWrongCurrentPassword, utils.ParseError(err).Message)
	})

	t.Run("Success issues a token and drops pending reset", func(t *testing.T) {
		require.NoError(t, repo.SetResetToken(ctx, ada.ID, "hash", time.Now().Add(time.Hour)))

		token, err := svc.ChangePassword(ctx, ada.ID, &models.PasswordChange{CurrentPassword: "secret1", NewPassword: "newpass1"})
		require.NoError(t, err)

		userID, err := newTestJWTService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, ada.ID, userID)

		stored, err := repo.GetByID(ctx, ada.ID)
		require.NoError(t, err)
		assert.True(t, newTestHasher().Verify("newpass1", stored.PasswordHash))
		assert.False(t, newTestHasher().Verify("secret1", stored.PasswordHash))
		assert.Nil(t, stored.ResetPasswordToken)
	})
}

func TestUserService_UpdateProfile_RefreshesCachedOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()

	users := NewMockUserRepository()
	projectSvc := NewProjectService(NewMockProjectRepository(users), &MockImageStore{}, cache.NewProjectCache(client, time.Minute, nil))
	svc := NewUserService(users, newTestHasher(), newTestJWTService(), projectSvc, nil)
	ctx := context.Background()

	ada := seedUser(users, "Ada", "ada@example.com", "secret1")
	project, err := projectSvc.CreateProject(ctx, ada.ID, sampleInput(), nil)
	require.NoError(t, err)

	// Warm both cache entries
	_, err = projectSvc.ListProjects(ctx)
	require.NoError(t, err)
	_, err = projectSvc.GetProject(ctx, project.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, ada.ID, &models.ProfileUpdate{Name: strPtr("Ada Lovelace")})
	require.NoError(t, err)

	single, err := projectSvc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, single.Owner)
	assert.Equal(t, "Ada Lovelace", single.Owner.Name)

	list, err := projectSvc.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ada Lovelace", list[0].Owner.Name)

	// A change that leaves name and avatar alone keeps the cache
	_, err = projectSvc.ListProjects(ctx)
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, ada.ID, &models.ProfileUpdate{Bio: strPtr("Mathematician")})
	require.NoError(t, err)
	assert.True(t, mr.Exists("projects:list"))
}
