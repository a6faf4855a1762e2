package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/pathway-api/internal/config"
	"github.com/noah-isme/pathway-api/internal/handler"
	"github.com/noah-isme/pathway-api/internal/middleware"
	"github.com/noah-isme/pathway-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LearningPathHandler *handler.LearningPathHandler
	EditorHandler       *handler.EditorHandler
	NoteHandler         *handler.NoteHandler
	ResourceHandler     *handler.ResourceHandler
	TagHandler          *handler.TagHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.LearningPathHandler != nil {
		deps.LearningPathHandler.Register(app.Group("/api/paths", jwtMiddleware, middleware.RateLimit("paths", 120, time.Minute)))
	}

	if deps.EditorHandler != nil {
		deps.EditorHandler.Register(app.Group("/api/editor", jwtMiddleware))
	}

	if deps.NoteHandler != nil {
		deps.NoteHandler.Register(app.Group("/api/notes", jwtMiddleware))
	}

	if deps.ResourceHandler != nil {
		deps.ResourceHandler.Register(app.Group("/api/resources", jwtMiddleware))
	}

	if deps.TagHandler != nil {
		deps.TagHandler.Register(app.Group("/api/tags", jwtMiddleware))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(app.Group("/api/notifications", jwtMiddleware))
	}
}
