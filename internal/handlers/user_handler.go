package handlers

import (
	"kunci/internal/models"
	"kunci/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. protect is the session
// middleware; adminOnly additionally requires the admin role.
func (h *UserHandler) RegisterRoutes(router fiber.Router, protect, adminOnly fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", protect, adminOnly, h.HandleGetUsers)
	userRoutes.Put("/profile", protect, h.HandleUpdateProfile)
	userRoutes.Get("/:id", protect, adminOnly, h.HandleGetUser)
	userRoutes.Delete("/:id", protect, adminOnly, h.HandleDeleteUser)
}

// HandleGetUsers returns all users, secret material stripped.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers()
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(users),
		"data":    users,
	})
}

// HandleGetUser returns a single user by id.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// UpdateProfileRequest represents the request body for a profile update.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// HandleUpdateProfile updates the caller's name and email. Credentials have
// no update path.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	currentUser, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authorized to access this route",
		})
	}

	var req UpdateProfileRequest
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

	user, err := h.userService.UpdateProfile(currentUser.ID, req.Name, req.Email)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// HandleDeleteUser removes a user record.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}
