package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"kunci/internal/handlers"
	"kunci/internal/middleware"
	"kunci/internal/models"
	"kunci/internal/repositories"
	"kunci/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over an in-memory SQLite database with the
// full route table, mirroring main.go.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Feedback{}))

	userRepo := repositories.NewGORMUserRepository(db)
	feedbackRepo := repositories.NewGORMFeedbackRepository(db)

	authService := services.NewAuthService(userRepo, services.Config{
		SigningSecret: "test_jwt_secret",
		HashCost:      bcrypt.MinCost,
	}, nil)
	userService := services.NewUserService(userRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo)
	adminService := services.NewAdminService(userRepo, nil)

	app := fiber.New()
	api := app.Group("/api")
	protect := middleware.AuthRequired(authService)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	handlers.NewAuthHandler(authService).RegisterRoutes(api, protect)
	handlers.NewUserHandler(userService).RegisterRoutes(api, protect, adminOnly)
	handlers.NewFeedbackHandler(feedbackService).RegisterRoutes(api, protect, adminOnly)
	handlers.NewAdminHandler(adminService, authService, userService).RegisterRoutes(api, protect, adminOnly)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"name":            "Integration User",
		"email":           email,
		"password":        "password123",
		"colorPreference": "blue",
		"sportPreference": "tennis",
		"graphicalPassword": map[string]interface{}{
			"imageId": "image-1",
			"points": []map[string]int{
				{"x": 10, "y": 10}, {"x": 50, "y": 50}, {"x": 90, "y": 90}, {"x": 130, "y": 130},
			},
		},
	}
}

func TestRegisterAndMe(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("me@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// Session cookie travels alongside the body token.
	var cookieSet bool
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.Value == token {
			cookieSet = true
		}
	}
	assert.True(t, cookieSet)

	resp, body = doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "me@example.com", data["email"])

	// Secret material never leaves the boundary.
	assert.NotContains(t, data, "password")
	gp := data["graphicalPassword"].(map[string]interface{})
	assert.Nil(t, gp["points"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupApp(t)

	// Missing field.
	body := registerBody("bad@example.com")
	delete(body, "colorPreference")
	resp, decoded := doJSON(t, app, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please provide all required fields", decoded["error"])

	// Wrong point count.
	body = registerBody("bad@example.com")
	body["graphicalPassword"] = map[string]interface{}{
		"imageId": "image-1",
		"points":  []map[string]int{{"x": 1, "y": 1}, {"x": 2, "y": 2}, {"x": 3, "y": 3}},
	}
	resp, decoded = doJSON(t, app, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please select exactly 4 points for the graphical password", decoded["error"])

	// Duplicate email.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("dup@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, decoded = doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("dup@example.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already exists", decoded["error"])
}

func TestLoginNonDistinguishability(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("login@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login := func(email, password string) (int, string) {
		resp, decoded := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
			"email":    email,
			"password": password,
			"graphicalPassword": map[string]interface{}{
				"points": []map[string]int{
					{"x": 10, "y": 10}, {"x": 50, "y": 50}, {"x": 90, "y": 90}, {"x": 130, "y": 130},
				},
			},
		})
		msg, _ := decoded["error"].(string)
		return resp.StatusCode, msg
	}

	unknownStatus, unknownMsg := login("nobody@example.com", "password123")
	wrongPwStatus, wrongPwMsg := login("login@example.com", "wrongpassword")

	assert.Equal(t, http.StatusUnauthorized, unknownStatus)
	assert.Equal(t, unknownStatus, wrongPwStatus)
	assert.Equal(t, unknownMsg, wrongPwMsg)

	okStatus, _ := login("login@example.com", "password123")
	assert.Equal(t, http.StatusOK, okStatus)
}

func TestStagedFlow(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("staged@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Stage 1: color.
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-color", "", map[string]interface{}{
		"email":           "staged@example.com",
		"colorPreference": "blue",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	// Stage 2: sport + password reveals the challenge image.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/verify-sport", "", map[string]interface{}{
		"email":           "staged@example.com",
		"sportPreference": "tennis",
		"password":        "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image-1", body["imageId"])

	// Stage 3: graphical, with clicks inside the tolerance window. This is
	// the only stage that issues a session.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/verify-graphical", "", map[string]interface{}{
		"email": "staged@example.com",
		"points": []map[string]int{
			{"x": 12, "y": 8}, {"x": 48, "y": 53}, {"x": 88, "y": 92}, {"x": 135, "y": 125},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStagedFlowRejections(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("reject@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-color", "", map[string]interface{}{
		"email":           "reject@example.com",
		"colorPreference": "red",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body["error"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/verify-graphical", "", map[string]interface{}{
		"email": "reject@example.com",
		"points": []map[string]int{
			{"x": 400, "y": 400}, {"x": 410, "y": 410}, {"x": 420, "y": 420}, {"x": 430, "y": 430},
		},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid graphical password", body["error"])
}

func TestProfileUpdateAndFeedback(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("profile@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	resp, body = doJSON(t, app, http.MethodPut, "/api/users/profile", token, map[string]interface{}{
		"name":  "Renamed User",
		"email": "renamed@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Renamed User", data["name"])
	assert.Equal(t, "renamed@example.com", data["email"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/feedback/", token, map[string]interface{}{
		"rating":  5,
		"comment": "the staged flow is neat",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/feedback/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
}

func TestAdminEndpoints(t *testing.T) {
	app, db := setupApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", registerBody("admin@example.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	userToken := body["token"].(string)

	// A regular user is locked out of the admin surface.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/user-stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Promote and log in through the admin console.
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "admin@example.com").
		Update("role", models.RoleAdmin).Error)

	resp, body = doJSON(t, app, http.MethodPost, "/api/admin/login", "", map[string]interface{}{
		"username": "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken := body["token"].(string)

	resp, body = doJSON(t, app, http.MethodGet, "/api/admin/user-stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["totalUsers"])
	assert.Equal(t, float64(1), stats["adminUsers"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/admin/password-metrics", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["totalUsers"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/users/", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
}
