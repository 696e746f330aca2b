package services

import (
	"errors"

	"kunci/internal/models"
	"kunci/internal/repositories"
)

// UserService handles profile and account management around the credential
// store. Credentials themselves are immutable after registration; only the
// profile fields (name, email) have an update path.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns all users with secret material stripped.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}
	sanitized := make([]models.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}
	return sanitized, nil
}

// GetUser returns a single user with secret material stripped.
func (s *UserService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateProfile changes the caller's name and email.
func (s *UserService) UpdateProfile(id, name, email string) (*models.User, error) {
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}
	user, err := s.userRepo.UpdateProfile(id, name, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// DeleteUser removes a user record.
func (s *UserService) DeleteUser(id string) error {
	return s.userRepo.Delete(id)
}
