package routes

import (
	"sandy/internal/delivery/http/handler"
	"sandy/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// Handlers is everything the router mounts. AuthLimit may be nil.
type Handlers struct {
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Profile        *handler.ProfileHandler
	Chat           *handler.ChatHandler
	Recommendation *handler.RecommendationHandler
	Interaction    *handler.InteractionHandler
	Analytics      *handler.AnalyticsHandler
	Health         *handler.HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	AuthLimit      fiber.Handler
}

type Registry struct {
	h Handlers
}

func NewRegistry(h Handlers) *Registry {
	return &Registry{h: h}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.h.Health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	authed := r.h.AuthMiddleware.Middleware()

	api.Get("/health", r.h.Health.Ready)

	// Register and login stay public; auth is attached per route.
	users := api.Group("/users")
	r.h.Auth.RegisterRoutes(users, r.h.AuthLimit)
	users.Post("/logout", authed, r.h.Auth.Logout)
	r.h.User.RegisterRoutes(users, authed)
	r.h.Chat.RegisterViewset(api.Group("/users/:user_id/chat", authed))

	r.h.Auth.RegisterTokenRoutes(api.Group("/auth/token"), r.h.AuthLimit)

	r.h.Profile.RegisterRoutes(api.Group("/profiles", authed))
	r.h.Chat.RegisterRoutes(api.Group("/chat", authed))
	r.h.Recommendation.RegisterRoutes(api.Group("/recommendations", authed))
	r.h.Interaction.RegisterRoutes(api.Group("/interactions", authed))
	r.h.Analytics.RegisterRoutes(api.Group("/analytics", authed))

	admin := api.Group("/admin", authed, middleware.RequireStaff())
	r.h.Analytics.RegisterAdminRoutes(admin)
	admin.Get("/profiles", r.h.Profile.ListDocuments)
}
