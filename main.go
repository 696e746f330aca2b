package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kunci/internal/handlers"
	"kunci/internal/middleware"
	"kunci/internal/models"
	"kunci/internal/repositories"
	"kunci/internal/services"
	"kunci/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	// Viper reads the environment once here; core services receive an
	// explicit config struct and never touch the environment themselves.
	viper.SetDefault("APP_PORT", ":5000")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("SQLITE_PATH", "kunci.db")
	viper.SetDefault("JWT_EXPIRE", "720h")
	viper.SetDefault("ADMIN_JWT_EXPIRE", "1h")
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("GRAPHICAL_TOLERANCE", 15)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	viper.SetDefault("STATIC_DIR", "./public")
	viper.AutomaticEnv()

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// --- Database ---
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Feedback{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ audit trail (optional) ---
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			// Audit events are best-effort; auth must keep working
			// when the broker is down.
			log.Printf("Warning: RabbitMQ unavailable, auth events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	feedbackRepo := repositories.NewGORMFeedbackRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, services.Config{
		SigningSecret:      jwtSecret,
		TokenExpiry:        viper.GetDuration("JWT_EXPIRE"),
		AdminTokenExpiry:   viper.GetDuration("ADMIN_JWT_EXPIRE"),
		HashCost:           viper.GetInt("BCRYPT_COST"),
		GraphicalTolerance: viper.GetInt("GRAPHICAL_TOLERANCE"),
	}, mqClient)
	userService := services.NewUserService(userRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo)
	adminService := services.NewAdminService(userRepo, nil)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	adminHandler := handlers.NewAdminHandler(adminService, authService, userService)

	// --- Fiber app ---
	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     viper.GetString("CORS_ORIGIN"),
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, X-Requested-With, Content-Type, Accept, Authorization, x-auth-token",
	}))

	// --- API routes ---
	api := app.Group("/api")
	protect := middleware.AuthRequired(authService)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	authHandler.RegisterRoutes(api, protect)
	userHandler.RegisterRoutes(api, protect, adminOnly)
	feedbackHandler.RegisterRoutes(api, protect, adminOnly)
	adminHandler.RegisterRoutes(api, protect, adminOnly)

	api.Get("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "API is working!"})
	})

	// Static assets, then a JSON 404 for everything unmatched.
	app.Static("/", viper.GetString("STATIC_DIR"))
	app.Use(func(c *fiber.Ctx) error {
		log.Printf("404 - Not Found: %s %s", c.Method(), c.OriginalURL())
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found: " + c.OriginalURL(),
		})
	})

	// --- Auth event consumer ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for auth events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Auth event %s (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeAuthEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP server ---
	appPort := viper.GetString("APP_PORT")
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase connects to Postgres when DATABASE_URL is set, and falls back
// to a local SQLite file otherwise. TranslateError makes unique index
// violations surface as gorm.ErrDuplicatedKey on both drivers.
func openDatabase() (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	if dsn := viper.GetString("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), gormCfg)
	}
	return gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), gormCfg)
}
