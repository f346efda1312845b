package handler

import (
	"context"
	"time"

	"sandy/internal/delivery/http/middleware"
	"sandy/internal/pkg/response"
	"sandy/internal/service"

	"github.com/gofiber/fiber/v3"
)

type DatabaseChecker interface {
	HealthCheck(ctx context.Context) service.Health
}

type CachePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      DatabaseChecker
	cache   CachePinger
	timeout time.Duration
}

func NewHealthHandler(db DatabaseChecker, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, timeout: 3 * time.Second}
}

// RegisterRoutes mounts the liveness probe on the app root.
func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Live)
}

func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready reports the database and cache. Only an unhealthy database fails the
// probe; the API runs without Redis.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	db := h.db.HealthCheck(ctx)

	cache := fiber.Map{"status": service.StatusHealthy}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			cache = fiber.Map{"status": "unavailable", "error": err.Error()}
		}
	}

	data := fiber.Map{"database": db, "cache": cache}
	if !db.Healthy() {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, data, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
