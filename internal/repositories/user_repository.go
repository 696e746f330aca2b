package repositories

import (
	"errors"
	"time"

	"kunci/internal/models"
)

// Sentinel errors shared by all repository implementations so the service
// layer can map storage outcomes without matching on message text.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a unique constraint violation (e.g. email taken).
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserRepository defines the interface for credential record access.
type UserRepository interface {
	// Create inserts a new user. Uniqueness of the email is enforced by the
	// store itself (unique index), never by a check-then-insert; a violation
	// surfaces as ErrDuplicateKey.
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll() ([]models.User, error)
	// UpdateProfile changes the mutable profile fields only; credentials are
	// immutable after registration.
	UpdateProfile(id, name, email string) (*models.User, error)
	Delete(id string) error
	Count() (int64, error)
	CountByRole(role string) (int64, error)
	CountCreatedSince(since time.Time) (int64, error)
}
