package app

import (
	"errors"
	"time"

	"ingreedio/internal/config"
	"ingreedio/internal/handlers"
	"ingreedio/internal/middleware"
	"ingreedio/internal/repositories"
	"ingreedio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// New wires repositories, services and handlers into a Fiber app. publisher
// may be nil, in which case review events are not sent.
func New(cfg *config.Config, db *gorm.DB, log *logrus.Logger, publisher services.EventPublisher) (*fiber.App, error) {
	issuer, err := services.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	// --- Services ---
	userManager := services.NewUserManager(userRepo, log,
		services.WithPasswordPolicy(cfg.Password),
		services.WithLockoutPolicy(cfg.Lockout),
	)
	authService := services.NewAuthService(userManager, issuer, log)
	productService := services.NewProductService(productRepo, log)
	reviewService := services.NewReviewService(reviewRepo, publisher, log)
	userService := services.NewUserService(userRepo, log)

	// --- Handlers ---
	validate := validator.New()
	authHandler := handlers.NewAuthHandler(authService, validate, log)
	productHandler := handlers.NewProductHandler(productService, validate, log)
	reviewHandler := handlers.NewReviewHandler(reviewService, validate, log)
	userHandler := handlers.NewUserHandler(userService, productService, validate, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: log.Writer()}))

	auth := middleware.AuthRequired(issuer, log)
	optional := middleware.OptionalAuth(issuer)

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, auth, optional)
	reviewHandler.RegisterRoutes(apiV1, auth)
	userHandler.RegisterRoutes(apiV1, auth)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		code, status, dbState := fiber.StatusOK, "healthy", "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			code, status, dbState = fiber.StatusServiceUnavailable, "unhealthy", "unavailable"
		}
		events := "disabled"
		if publisher != nil {
			events = "enabled"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
			"events":   events,
		})
	})

	return app, nil
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes, in the same JSON shape as the handlers use.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.WithFields(logrus.Fields{"path": c.Path(), "error": err.Error()}).Error("unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}
