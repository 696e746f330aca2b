package handlers

import (
	"kunci/internal/models"
	"kunci/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles HTTP requests for feedback.
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
	validate        *validator.Validate
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the feedback routes.
func (h *FeedbackHandler) RegisterRoutes(router fiber.Router, protect, adminOnly fiber.Handler) {
	feedbackRoutes := router.Group("/feedback")
	feedbackRoutes.Post("/", protect, h.HandleCreateFeedback)
	feedbackRoutes.Get("/me", protect, h.HandleGetMyFeedback)
	feedbackRoutes.Get("/analytics", protect, adminOnly, h.HandleGetAnalytics)
	feedbackRoutes.Get("/", protect, adminOnly, h.HandleGetAllFeedback)
}

// CreateFeedbackRequest represents the request body for new feedback.
type CreateFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// HandleCreateFeedback stores feedback for the current user.
func (h *FeedbackHandler) HandleCreateFeedback(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authorized to access this route",
		})
	}

	var req CreateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a rating between 1 and 5",
		})
	}

	feedback, err := h.feedbackService.CreateFeedback(user.ID, req.Rating, req.Comment)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    feedback,
	})
}

// HandleGetMyFeedback returns the current user's feedback.
func (h *FeedbackHandler) HandleGetMyFeedback(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authorized to access this route",
		})
	}

	feedback, err := h.feedbackService.GetUserFeedback(user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(feedback),
		"data":    feedback,
	})
}

// HandleGetAllFeedback returns every feedback entry.
func (h *FeedbackHandler) HandleGetAllFeedback(c *fiber.Ctx) error {
	feedback, err := h.feedbackService.GetAllFeedback()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(feedback),
		"data":    feedback,
	})
}

// HandleGetAnalytics returns feedback aggregates for the admin dashboard.
func (h *FeedbackHandler) HandleGetAnalytics(c *fiber.Ctx) error {
	analytics, err := h.feedbackService.GetAnalytics()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    analytics,
	})
}
