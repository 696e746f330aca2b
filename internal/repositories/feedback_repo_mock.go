package repositories

import (
	"sort"
	"sync"
	"time"

	"kunci/internal/models"

	"github.com/google/uuid"
)

// MockFeedbackRepository is an in-memory implementation of FeedbackRepository.
type MockFeedbackRepository struct {
	feedback []models.Feedback
	mu       sync.RWMutex
}

// NewMockFeedbackRepository creates a new instance of MockFeedbackRepository.
func NewMockFeedbackRepository() *MockFeedbackRepository {
	return &MockFeedbackRepository{}
}

// Create stores a new feedback entry.
func (r *MockFeedbackRepository) Create(feedback *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	r.feedback = append(r.feedback, *feedback)
	return nil
}

// GetAll returns all feedback entries.
func (r *MockFeedbackRepository) GetAll() ([]models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Feedback, len(r.feedback))
	copy(out, r.feedback)
	return out, nil
}

// GetByUser returns all feedback submitted by one user.
func (r *MockFeedbackRepository) GetByUser(userID string) ([]models.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Feedback
	for _, f := range r.feedback {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

// CountByRating groups feedback entries by rating value.
func (r *MockFeedbackRepository) CountByRating() ([]RatingCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byRating := make(map[int]int64)
	for _, f := range r.feedback {
		byRating[f.Rating]++
	}
	counts := make([]RatingCount, 0, len(byRating))
	for rating, count := range byRating {
		counts = append(counts, RatingCount{Rating: rating, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Rating < counts[j].Rating })
	return counts, nil
}

// CountByDay groups feedback entries by submission day.
func (r *MockFeedbackRepository) CountByDay() ([]DayCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byDay := make(map[string]int64)
	for _, f := range r.feedback {
		byDay[f.CreatedAt.Format("2006-01-02")]++
	}
	counts := make([]DayCount, 0, len(byDay))
	for day, count := range byDay {
		counts = append(counts, DayCount{Day: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Day < counts[j].Day })
	return counts, nil
}
