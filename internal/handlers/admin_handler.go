package handlers

import (
	"kunci/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles HTTP requests for the admin console.
type AdminHandler struct {
	adminService *services.AdminService
	authService  *services.AuthService
	userService  *services.UserService
	validate     *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService, authService *services.AuthService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		authService:  authService,
		userService:  userService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the admin routes. Everything except login is
// protected and admin-only.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, protect, adminOnly fiber.Handler) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Post("/login", h.HandleAdminLogin)
	adminRoutes.Get("/user-stats", protect, adminOnly, h.HandleUserStats)
	adminRoutes.Get("/password-metrics", protect, adminOnly, h.HandlePasswordMetrics)
	adminRoutes.Get("/users", protect, adminOnly, h.HandleGetUsers)
	adminRoutes.Delete("/users/:id", protect, adminOnly, h.HandleDeleteUser)
}

// AdminLoginRequest represents the request body for admin console login.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleAdminLogin authenticates an admin by password only and issues a
// short-lived console token.
func (h *AdminHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide all required fields",
		})
	}

	token, err := h.authService.AdminLogin(req.Username, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// HandleUserStats returns user base totals.
func (h *AdminHandler) HandleUserStats(c *fiber.Ctx) error {
	stats, err := h.adminService.GetUserStats()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// HandlePasswordMetrics returns the stored hash strength distribution.
func (h *AdminHandler) HandlePasswordMetrics(c *fiber.Ctx) error {
	metrics, err := h.adminService.GetPasswordMetrics()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":         true,
		"totalUsers":      metrics.TotalUsers,
		"passwordMetrics": metrics,
	})
}

// HandleGetUsers returns all users for the admin console.
func (h *AdminHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

// HandleDeleteUser removes a user from the admin console.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}
