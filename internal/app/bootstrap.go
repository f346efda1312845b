package app

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"sandy/internal/config"
	"sandy/internal/delivery/http/handler"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/delivery/http/routes"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type App struct {
	Fiber *fiber.App
}

// New builds the Fiber app over an already wired container.
func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{
		AppName:         cfg.App.AppName,
		JSONEncoder:     json.Marshal,
		JSONDecoder:     json.Unmarshal,
		StructValidator: middleware.NewStructValidator(),
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

func Bootstrap(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(middleware.NewMetricsMiddleware(c.Metrics).Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
	app.Use(cors.New(corsConfig(c.Config.CORS)))
	if c.Config.App.Debug {
		app.Use(middleware.DebugHeaders(c.Logger, "/api/users/me"))
	}
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	auth := c.Config.Auth
	routes.NewRegistry(routes.Handlers{
		Auth: handler.NewAuthHandler(c.Auth, handler.CookieConfig{
			Name:   auth.CookieName,
			Secure: auth.CookieSecure,
			MaxAge: auth.AccessTokenTTL(),
		}),
		User:           handler.NewUserHandler(c.Users),
		Profile:        handler.NewProfileHandler(c.Profiles),
		Chat:           handler.NewChatHandler(c.Conversations),
		Recommendation: handler.NewRecommendationHandler(c.Recommendation),
		Interaction:    handler.NewInteractionHandler(c.Interactions),
		Analytics:      handler.NewAnalyticsHandler(c.Analytics),
		Health:         handler.NewHealthHandler(c.Service, c.Cache),
		AuthMiddleware: middleware.NewAuthMiddleware(c.Auth, auth.CookieName, c.Logger),
		AuthLimit:      authLimiter(c.Config.RateLimit),
	}).Register(app)
}

// corsConfig allows credentials unless the origin list is a wildcard, which
// browsers reject in combination with credentials.
func corsConfig(cfg config.CORSConfig) cors.Config {
	origins := cfg.AllowedOrigins
	return cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: !slices.Contains(origins, "*"),
		AllowHeaders: []string{
			fiber.HeaderOrigin,
			fiber.HeaderContentType,
			fiber.HeaderAccept,
			fiber.HeaderAuthorization,
			middleware.HeaderAuthToken,
			middleware.HeaderRequestID,
		},
		ExposeHeaders: []string{middleware.HeaderRequestID},
	}
}

func authLimiter(cfg config.RateLimitConfig) fiber.Handler {
	if cfg.AuthMax <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:        cfg.AuthMax,
		Expiration: cfg.AuthWindow,
		LimitReached: func(c fiber.Ctx) error {
			return middleware.NewAppError(fiber.StatusTooManyRequests, "Too many attempts, try again later", nil, nil)
		},
	})
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
