package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kunci/internal/graphical"
	"kunci/internal/models"
	"kunci/internal/repositories"
	"kunci/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Config carries the process-wide authentication settings. It is built once
// at startup and passed into the service constructor; core logic never reads
// the environment directly.
type Config struct {
	SigningSecret      string
	TokenExpiry        time.Duration    // session token lifetime, default 30 days
	AdminTokenExpiry   time.Duration    // admin console token lifetime, default 1 hour
	HashCost           int              // bcrypt cost factor, default 10
	GraphicalTolerance int              // per-axis pixel tolerance, default 15
	Clock              func() time.Time // injected for token expiry tests
}

func (c *Config) applyDefaults() {
	if c.TokenExpiry == 0 {
		c.TokenExpiry = 30 * 24 * time.Hour
	}
	if c.AdminTokenExpiry == 0 {
		c.AdminTokenExpiry = time.Hour
	}
	if c.HashCost == 0 {
		c.HashCost = 10
	}
	if c.GraphicalTolerance == 0 {
		c.GraphicalTolerance = graphical.DefaultTolerance
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// AuthService orchestrates the multi-factor verification protocol: it owns
// password hashing, graphical matching, the fixed factor ordering of each
// login flow, and session token issuance.
type AuthService struct {
	userRepo  repositories.UserRepository
	cfg       Config
	jwtSecret []byte
	now       func() time.Time
	mqClient  *rabbitmq.Client // optional audit event publisher
}

// NewAuthService creates a new AuthService. mqClient may be nil, in which
// case audit events are skipped.
func NewAuthService(userRepo repositories.UserRepository, cfg Config, mqClient *rabbitmq.Client) *AuthService {
	cfg.applyDefaults()
	return &AuthService{
		userRepo:  userRepo,
		cfg:       cfg,
		jwtSecret: []byte(cfg.SigningSecret),
		now:       cfg.Clock,
		mqClient:  mqClient,
	}
}

// RegisterInput is the validated input for a registration attempt.
type RegisterInput struct {
	Name              string
	Email             string
	Password          string
	ColorPreference   string
	SportPreference   string
	GraphicalPassword models.GraphicalPassword
}

// Register validates and normalizes the input, hashes the password, stores
// the new credential record and issues a session token (auto-login).
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" ||
		input.ColorPreference == "" || input.SportPreference == "" ||
		input.GraphicalPassword.ImageID == "" || len(input.GraphicalPassword.Points) == 0 {
		return nil, "", ErrMissingFields
	}

	// Exactly 4 click points, checked before any expensive work. A wrong
	// count at registration is actionable and reported specifically, unlike
	// login-time mismatches.
	if len(input.GraphicalPassword.Points) != 4 {
		return nil, "", ErrInvalidGraphicalPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.HashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:              input.Name,
		Email:             normalizeEmail(input.Email),
		Password:          string(hashedPassword),
		ColorPreference:   input.ColorPreference,
		SportPreference:   input.SportPreference,
		GraphicalPassword: input.GraphicalPassword,
		Role:              models.RoleUser,
		CreatedAt:         s.now(),
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.issueToken(user.ID, user.Role, s.cfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}

	s.publishEvent("user.registered", user.Email, true)
	return user, token, nil
}

// Login runs the combined flow: password first, then the graphical factor,
// short-circuiting on the first failure. A missing user and a wrong password
// both reject as ErrInvalidCredentials.
func (s *AuthService) Login(email, password string, points []models.Point) (*models.User, string, error) {
	if email == "" || password == "" || len(points) == 0 {
		return nil, "", ErrMissingFields
	}

	user, err := s.lookup(email)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.publishEvent("user.login", user.Email, false)
		return nil, "", ErrInvalidCredentials
	}

	if !graphical.Matches(points, user.GraphicalPassword.Points, s.cfg.GraphicalTolerance) {
		s.publishEvent("user.login", user.Email, false)
		return nil, "", ErrInvalidGraphicalPassword
	}

	token, err := s.issueToken(user.ID, user.Role, s.cfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}

	s.publishEvent("user.login", user.Email, true)
	return user, token, nil
}

// VerifyColor is the first stage of the staged flow. It checks the declared
// color preference and nothing else; no session is issued. Stages are
// stateless: the client resubmits the email on every stage.
func (s *AuthService) VerifyColor(email, colorPreference string) (*models.User, error) {
	if email == "" || colorPreference == "" {
		return nil, ErrMissingFields
	}

	user, err := s.lookup(email)
	if err != nil {
		return nil, err
	}

	if user.ColorPreference != colorPreference {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// VerifySport is the second stage: the sport preference and the password must
// both match. On success it returns the image id the client needs to render
// the graphical challenge; no session is issued yet.
func (s *AuthService) VerifySport(email, sportPreference, password string) (string, error) {
	if email == "" || sportPreference == "" || password == "" {
		return "", ErrMissingFields
	}

	user, err := s.lookup(email)
	if err != nil {
		return "", err
	}

	if user.SportPreference != sportPreference {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return user.GraphicalPassword.ImageID, nil
}

// VerifyGraphical is the terminal stage of the staged flow; a successful
// match issues the session token.
func (s *AuthService) VerifyGraphical(email string, points []models.Point) (*models.User, string, error) {
	if email == "" || len(points) == 0 {
		return nil, "", ErrMissingFields
	}

	user, err := s.lookup(email)
	if err != nil {
		return nil, "", err
	}

	if !graphical.Matches(points, user.GraphicalPassword.Points, s.cfg.GraphicalTolerance) {
		s.publishEvent("user.login", user.Email, false)
		return nil, "", ErrInvalidGraphicalPassword
	}

	token, err := s.issueToken(user.ID, user.Role, s.cfg.TokenExpiry)
	if err != nil {
		return nil, "", err
	}

	s.publishEvent("user.login", user.Email, true)
	return user, token, nil
}

// AdminLogin authenticates an admin by password only and issues a
// short-lived console token.
func (s *AuthService) AdminLogin(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingFields
	}

	user, err := s.lookup(email)
	if err != nil {
		return "", err
	}

	if user.Role != models.RoleAdmin {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(user.ID, user.Role, s.cfg.AdminTokenExpiry)
}

// GetUser loads a user by id for the /me endpoint and the auth middleware.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// ValidateToken parses and validates a session token, returning the bound
// user id and role. Tampered, malformed and expired tokens all reject the
// same way.
func (s *AuthService) ValidateToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrUnauthorized
	}

	// Re-check expiry against the injected clock; jwt.Parse checked it
	// against wall-clock time only.
	exp, ok := claims["exp"].(float64)
	if !ok || s.now().Unix() >= int64(exp) {
		return "", "", ErrUnauthorized
	}

	id, _ := claims["id"].(string)
	if id == "" {
		return "", "", ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	return id, role, nil
}

// issueToken mints a signed HS256 token binding the user id. It is a pure
// function of (id, role, secret, expiry, now).
func (s *AuthService) issueToken(userID, role string, expiry time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(expiry).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// lookup fetches a user by normalized email, collapsing "not found" into the
// umbrella credentials rejection.
func (s *AuthService) lookup(email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// publishEvent emits an audit event to the auth queue. Publishing is
// best-effort: failures are logged and never affect the request outcome.
func (s *AuthService) publishEvent(event, email string, success bool) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"email":   email,
		"success": success,
		"at":      s.now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal auth event: %v", err)
		return
	}
	if err := s.mqClient.Publish(event, body); err != nil {
		log.Printf("Warning: failed to publish auth event %s: %v", event, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
