package services

import (
	"sort"
	"time"

	"kunci/internal/models"
	"kunci/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserStats is the admin dashboard summary of the user base.
type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	AdminUsers    int64 `json:"adminUsers"`
	RegularUsers  int64 `json:"regularUsers"`
	NewUsersToday int64 `json:"newUsersToday"`
}

// CostCount is the number of stored hashes sharing one bcrypt cost factor.
type CostCount struct {
	Cost  int   `json:"cost"`
	Count int64 `json:"count"`
}

// PasswordMetrics describes the strength of the stored password hashes,
// derived from the bcrypt cost factor embedded in each hash.
type PasswordMetrics struct {
	TotalUsers      int64       `json:"totalUsers"`
	CostFactors     []CostCount `json:"costFactors"`
	UnreadableCount int64       `json:"unreadableCount"`
}

// AdminService computes aggregate metrics for the admin dashboard.
type AdminService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
}

// NewAdminService creates a new AdminService. clock may be nil.
func NewAdminService(userRepo repositories.UserRepository, clock func() time.Time) *AdminService {
	if clock == nil {
		clock = time.Now
	}
	return &AdminService{
		userRepo: userRepo,
		now:      clock,
	}
}

// GetUserStats returns totals by role plus the number of users registered
// since local midnight.
func (s *AdminService) GetUserStats() (*UserStats, error) {
	total, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	admins, err := s.userRepo.CountByRole(models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	regular, err := s.userRepo.CountByRole(models.RoleUser)
	if err != nil {
		return nil, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	newToday, err := s.userRepo.CountCreatedSince(midnight)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		TotalUsers:    total,
		AdminUsers:    admins,
		RegularUsers:  regular,
		NewUsersToday: newToday,
	}, nil
}

// GetPasswordMetrics groups stored hashes by their bcrypt cost factor.
func (s *AdminService) GetPasswordMetrics() (*PasswordMetrics, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}

	byCost := make(map[int]int64)
	var unreadable int64
	for _, u := range users {
		cost, err := bcrypt.Cost([]byte(u.Password))
		if err != nil {
			unreadable++
			continue
		}
		byCost[cost]++
	}

	costs := make([]CostCount, 0, len(byCost))
	for cost, count := range byCost {
		costs = append(costs, CostCount{Cost: cost, Count: count})
	}
	sort.Slice(costs, func(i, j int) bool { return costs[i].Cost < costs[j].Cost })

	return &PasswordMetrics{
		TotalUsers:      int64(len(users)),
		CostFactors:     costs,
		UnreadableCount: unreadable,
	}, nil
}
