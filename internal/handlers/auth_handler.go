package handlers

import (
	"errors"
	"log"
	"time"

	"kunci/internal/models"
	"kunci/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for the multi-factor auth protocol.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
// protect is the session middleware applied to the private routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/verify-color", h.HandleVerifyColor)
	authRoutes.Post("/verify-sport", h.HandleVerifySport)
	authRoutes.Post("/verify-graphical", h.HandleVerifyGraphical)
	authRoutes.Get("/me", protect, h.HandleMe)
	authRoutes.Get("/logout", protect, h.HandleLogout)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name              string                   `json:"name" validate:"required"`
	Email             string                   `json:"email" validate:"required,email"`
	Password          string                   `json:"password" validate:"required,min=6"`
	ColorPreference   string                   `json:"colorPreference" validate:"required"`
	SportPreference   string                   `json:"sportPreference" validate:"required"`
	GraphicalPassword models.GraphicalPassword `json:"graphicalPassword"`
}

// HandleRegister handles new user registration and auto-login.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide all required fields",
		})
	}

	user, token, err := h.authService.Register(services.RegisterInput{
		Name:              req.Name,
		Email:             req.Email,
		Password:          req.Password,
		ColorPreference:   req.ColorPreference,
		SportPreference:   req.SportPreference,
		GraphicalPassword: req.GraphicalPassword,
	})
	if err != nil {
		// Registration-time validation errors are specific and actionable,
		// unlike login rejections.
		if errors.Is(err, services.ErrInvalidGraphicalPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Please select exactly 4 points for the graphical password",
			})
		}
		return respondServiceError(c, err)
	}

	log.Printf("User created: %s", user.ID)
	return h.sendTokenResponse(c, fiber.StatusOK, token)
}

// LoginRequest represents the request body for the combined login flow.
// Clients submit only the click points at login; the image id is not resent,
// so the nested struct's field tags must not be applied here.
type LoginRequest struct {
	Email             string                   `json:"email" validate:"required"`
	Password          string                   `json:"password" validate:"required"`
	GraphicalPassword models.GraphicalPassword `json:"graphicalPassword" validate:"structonly"`
}

// HandleLogin handles the combined password + graphical login.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil || len(req.GraphicalPassword.Points) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide email, password and graphical password",
		})
	}

	_, token, err := h.authService.Login(req.Email, req.Password, req.GraphicalPassword.Points)
	if err != nil {
		return respondServiceError(c, err)
	}

	return h.sendTokenResponse(c, fiber.StatusOK, token)
}

// VerifyColorRequest represents the request body for the color stage.
type VerifyColorRequest struct {
	Email           string `json:"email" validate:"required"`
	ColorPreference string `json:"colorPreference" validate:"required"`
}

// HandleVerifyColor handles the first stage of the staged flow. No session
// is issued; the stage only confirms the declared color preference.
func (h *AuthHandler) HandleVerifyColor(c *fiber.Ctx) error {
	var req VerifyColorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide email and color preference",
		})
	}

	user, err := h.authService.VerifyColor(req.Email, req.ColorPreference)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"email":   user.Email,
		"userId":  user.ID,
	})
}

// VerifySportRequest represents the request body for the sport stage.
type VerifySportRequest struct {
	Email           string `json:"email" validate:"required"`
	SportPreference string `json:"sportPreference" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// HandleVerifySport handles the second stage: sport preference plus password.
// On success the response carries the image id the client needs to render
// the graphical challenge.
func (h *AuthHandler) HandleVerifySport(c *fiber.Ctx) error {
	var req VerifySportRequest
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

	imageID, err := h.authService.VerifySport(req.Email, req.SportPreference, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"imageId": imageID,
	})
}

// VerifyGraphicalRequest represents the request body for the final stage.
type VerifyGraphicalRequest struct {
	Email  string         `json:"email" validate:"required"`
	Points []models.Point `json:"points" validate:"required"`
}

// HandleVerifyGraphical handles the terminal stage of the staged flow and
// issues the session token on success.
func (h *AuthHandler) HandleVerifyGraphical(c *fiber.Ctx) error {
	var req VerifyGraphicalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide email and graphical password points",
		})
	}

	_, token, err := h.authService.VerifyGraphical(req.Email, req.Points)
	if err != nil {
		return respondServiceError(c, err)
	}

	return h.sendTokenResponse(c, fiber.StatusOK, token)
}

// HandleMe returns the current user's profile.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authorized to access this route",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    user.Sanitized(),
	})
}

// HandleLogout clears the token cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{},
	})
}

// sendTokenResponse sets the session cookie and returns the token in the
// body, matching what the clients expect.
func (h *AuthHandler) sendTokenResponse(c *fiber.Ctx, statusCode int, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HTTPOnly: true,
	})

	return c.Status(statusCode).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}
