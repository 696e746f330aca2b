package repositories

import (
	"fmt"

	"kunci/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFeedbackRepository is a GORM implementation of FeedbackRepository.
type GORMFeedbackRepository struct {
	db *gorm.DB
}

// NewGORMFeedbackRepository creates a new instance of GORMFeedbackRepository.
func NewGORMFeedbackRepository(db *gorm.DB) *GORMFeedbackRepository {
	return &GORMFeedbackRepository{
		db: db,
	}
}

// Create stores a new feedback entry.
func (r *GORMFeedbackRepository) Create(feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	if err := r.db.Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// GetAll retrieves all feedback entries.
func (r *GORMFeedbackRepository) GetAll() ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := r.db.Order("created_at").Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get all feedback: %w", err)
	}
	return feedback, nil
}

// GetByUser retrieves all feedback submitted by one user.
func (r *GORMFeedbackRepository) GetByUser(userID string) ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to get feedback for user %s: %w", userID, err)
	}
	return feedback, nil
}

// CountByRating groups feedback entries by rating value.
func (r *GORMFeedbackRepository) CountByRating() ([]RatingCount, error) {
	var counts []RatingCount
	err := r.db.Model(&models.Feedback{}).
		Select("rating, count(*) as count").
		Group("rating").
		Order("rating").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback by rating: %w", err)
	}
	return counts, nil
}

// CountByDay groups feedback entries by submission day.
func (r *GORMFeedbackRepository) CountByDay() ([]DayCount, error) {
	var counts []DayCount
	// date() is the one day-truncation form both SQLite and Postgres accept.
	err := r.db.Model(&models.Feedback{}).
		Select("date(created_at) as day, count(*) as count").
		Group("date(created_at)").
		Order("day").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feedback by day: %w", err)
	}
	return counts, nil
}
