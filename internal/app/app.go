package app

import (
	"kontak/internal/config"
	"kontak/internal/handlers"
	"kontak/internal/middleware"
	"kontak/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber application: middleware, API routes, the static entry
// page and the JSON 404 fallback.
func NewApp(cfg *config.Config, service *services.SubmissionService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "kontak",
		BodyLimit:             cfg.BodyLimit,
		Immutable:             true,
		ProxyHeader:           cfg.ProxyHeader,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: cfg.Environment == "test",
	})

	// --- Middleware ---
	app.Use(recover.New())
	if cfg.Environment != "test" {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(middleware.ClientIP())

	// --- API Routes ---
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:          cfg.RateLimitMax,
		Expiration:   cfg.RateLimitWindow,
		LimitReached: middleware.RateLimitReached,
	}))

	handlers.NewSubmissionHandler(service).RegisterRoutes(api)
	handlers.NewHealthHandler(service).RegisterRoutes(api)

	// --- Entry page ---
	app.Static("/", cfg.StaticDir)

	app.Use(middleware.NotFound)

	return app
}
