package repositories

import (
	"kunci/internal/models"
)

// RatingCount is the number of feedback entries sharing one rating value.
type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// DayCount is the number of feedback entries submitted on one calendar day.
type DayCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// FeedbackRepository defines the interface for feedback data access.
type FeedbackRepository interface {
	Create(feedback *models.Feedback) error
	GetAll() ([]models.Feedback, error)
	GetByUser(userID string) ([]models.Feedback, error)
	CountByRating() ([]RatingCount, error)
	CountByDay() ([]DayCount, error)
}
