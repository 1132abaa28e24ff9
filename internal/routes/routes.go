package routes

import (
	"time"

	"github.com/Smear6uard/CloseOut/internal/config"
	"github.com/Smear6uard/CloseOut/internal/handlers"
	"github.com/Smear6uard/CloseOut/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	projectHandler *handlers.ProjectHandler,
	punchItemHandler *handlers.PunchItemHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	// Webhooks — Polar authenticates via HMAC signature, not JWT
	api.Post("/webhook/polar", webhookHandler.HandlePolar)

	// Everything else requires a verified identity token
	protected := api.Group("", middleware.JWTProtected(cfg))

	users := protected.Group("/users")
	users.Post("/sync", userHandler.Sync)
	users.Get("/me", userHandler.Me)
	users.Get("/usage", userHandler.Usage)

	projects := protected.Group("/projects")
	projects.Get("", projectHandler.List)
	projects.Post("", projectHandler.Create)
	projects.Get("/:id", projectHandler.Get)
	projects.Put("/:id", projectHandler.Update)
	projects.Delete("/:id", projectHandler.Remove)
	projects.Get("/:id/stats", projectHandler.Stats)
	projects.Get("/:id/report", projectHandler.Report)
	projects.Get("/:id/activity", projectHandler.Activity)
	projects.Get("/:id/items", punchItemHandler.ListByProject)
	projects.Post("/:id/items", punchItemHandler.Create)

	items := protected.Group("/items")
	items.Get("/recent", punchItemHandler.Recent)
	items.Get("/:id", punchItemHandler.Get)
	items.Put("/:id", punchItemHandler.Update)
	items.Delete("/:id", punchItemHandler.Remove)
	items.Put("/:id/status", punchItemHandler.UpdateStatus)
	items.Put("/:id/assign", punchItemHandler.Assign)
	items.Put("/:id/completion-photo", punchItemHandler.AddCompletionPhoto)
}
