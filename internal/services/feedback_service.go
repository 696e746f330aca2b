package services

import (
	"kunci/internal/models"
	"kunci/internal/repositories"
)

// FeedbackAnalytics aggregates feedback submissions for the admin dashboard.
type FeedbackAnalytics struct {
	RatingAnalytics []repositories.RatingCount `json:"ratingAnalytics"`
	FeedbackByDate  []repositories.DayCount    `json:"feedbackByDate"`
}

// FeedbackService handles business logic related to user feedback.
type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepository
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(feedbackRepo repositories.FeedbackRepository) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
	}
}

// CreateFeedback stores a new feedback entry for the given user.
func (s *FeedbackService) CreateFeedback(userID string, rating int, comment string) (*models.Feedback, error) {
	if userID == "" || rating == 0 {
		return nil, ErrMissingFields
	}

	feedback := &models.Feedback{
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.feedbackRepo.Create(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// GetUserFeedback returns the feedback submitted by one user.
func (s *FeedbackService) GetUserFeedback(userID string) ([]models.Feedback, error) {
	return s.feedbackRepo.GetByUser(userID)
}

// GetAllFeedback returns every feedback entry.
func (s *FeedbackService) GetAllFeedback() ([]models.Feedback, error) {
	return s.feedbackRepo.GetAll()
}

// GetAnalytics aggregates feedback by rating and by submission day.
func (s *FeedbackService) GetAnalytics() (*FeedbackAnalytics, error) {
	byRating, err := s.feedbackRepo.CountByRating()
	if err != nil {
		return nil, err
	}
	byDay, err := s.feedbackRepo.CountByDay()
	if err != nil {
		return nil, err
	}
	return &FeedbackAnalytics{
		RatingAnalytics: byRating,
		FeedbackByDate:  byDay,
	}, nil
}
