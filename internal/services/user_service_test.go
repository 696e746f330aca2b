package services_test

import (
	"testing"

	"kunci/internal/repositories"
	"kunci/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTestUser(t *testing.T, repo repositories.UserRepository) string {
	t.Helper()
	authService := services.NewAuthService(repo, testConfig(), nil)
	user, _, err := authService.Register(validInput())
	require.NoError(t, err)
	return user.ID
}

func TestUserService_ListAndGetSanitized(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	id := registerTestUser(t, repo)
	userService := services.NewUserService(repo)

	users, err := userService.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)
	assert.Nil(t, users[0].GraphicalPassword.Points)
	assert.Equal(t, "image-1", users[0].GraphicalPassword.ImageID)

	user, err := userService.GetUser(id)
	require.NoError(t, err)
	assert.Empty(t, user.Password)
	assert.Nil(t, user.GraphicalPassword.Points)
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	id := registerTestUser(t, repo)
	userService := services.NewUserService(repo)

	user, err := userService.UpdateProfile(id, "New Name", "New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "new@example.com", user.Email)

	// Credentials are untouched by a profile update.
	stored, err := repo.GetByID(id)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Password)
	assert.Len(t, stored.GraphicalPassword.Points, 4)

	_, err = userService.UpdateProfile(id, "", "new@example.com")
	assert.ErrorIs(t, err, services.ErrMissingFields)

	_, err = userService.UpdateProfile("no-such-id", "Name", "a@b.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserService_UpdateProfileDuplicateEmail(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	id := registerTestUser(t, repo)

	authService := services.NewAuthService(repo, testConfig(), nil)
	other := validInput()
	other.Email = "other@example.com"
	_, _, err := authService.Register(other)
	require.NoError(t, err)

	userService := services.NewUserService(repo)
	_, err = userService.UpdateProfile(id, "Test User", "other@example.com")
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
}

func TestUserService_DeleteUser(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	id := registerTestUser(t, repo)
	userService := services.NewUserService(repo)

	assert.NoError(t, userService.DeleteUser(id))
	assert.ErrorIs(t, userService.DeleteUser(id), repositories.ErrNotFound)
}
