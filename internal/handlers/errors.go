package handlers

import (
	"errors"
	"log"

	"kunci/internal/repositories"
	"kunci/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError maps the service error taxonomy to HTTP responses.
// The wire messages deliberately never reveal which login factor failed.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrMissingFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide all required fields",
		})
	case errors.Is(err, services.ErrDuplicateEmail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already exists",
		})
	case errors.Is(err, services.ErrInvalidGraphicalPassword):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid graphical password",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authorized to access this route",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	default:
		log.Printf("Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server Error",
		})
	}
}
