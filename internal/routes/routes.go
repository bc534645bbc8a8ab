package routes

import (
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	loader middleware.ActorLoader,
	limiterStorage fiber.Storage,
	authHandler *handlers.AuthHandler,
	agentHandler *handlers.AgentHandler,
	uploadHandler *handlers.UploadHandler,
	taskHandler *handlers.TaskHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", healthHandler.Root)

	api := app.Group("/api")

	// General API rate limiter
	api.Use(middleware.RateLimit("api", cfg.RateLimitMax, limiterStorage))

	api.Get("/health", healthHandler.Check)

	adminOnly := middleware.RealmRequired(cfg, principal.RealmAdmin, loader)
	agentOnly := middleware.RealmRequired(cfg, principal.RealmAgent, loader)
	authLimit := middleware.RateLimit("auth", cfg.AuthRateLimitMax, limiterStorage)

	// Administrator realm
	admin := api.Group("/admin")
	admin.Post("/register", authLimit, authHandler.RegisterAdmin)
	admin.Post("/login", authLimit, authHandler.LoginAdmin)
	admin.Get("/profile", append(adminOnly, authHandler.AdminProfile)...)
	admin.Put("/password", append(adminOnly, authHandler.ChangePassword)...)

	agents := api.Group("/agents", adminOnly...)
	agents.Post("/", agentHandler.CreateAgent)
	agents.Get("/", agentHandler.ListAgents)
	agents.Delete("/:id", agentHandler.DeleteAgent)

	upload := api.Group("/upload", adminOnly...)
	upload.Post("/", uploadHandler.Upload)
	upload.Get("/distributed", taskHandler.AllDistributed)

	// Agent realm
	agentAuth := api.Group("/agent-auth")
	agentAuth.Post("/login", authLimit, authHandler.LoginAgent)
	agentAuth.Get("/profile", append(agentOnly, authHandler.AgentProfile)...)
	agentAuth.Put("/password", append(agentOnly, authHandler.ChangePassword)...)

	subAgents := api.Group("/sub-agents", agentOnly...)
	subAgents.Post("/", agentHandler.CreateSubAgent)
	subAgents.Get("/", agentHandler.ListSubAgents)
	subAgents.Delete("/:id", agentHandler.DeleteSubAgent)

	tasks := api.Group("/agent-tasks", agentOnly...)
	tasks.Get("/", taskHandler.Assigned)
	tasks.Get("/distributed", taskHandler.Distributed)

	api.Post("/agent-upload", append(agentOnly, uploadHandler.Upload)...)
}
