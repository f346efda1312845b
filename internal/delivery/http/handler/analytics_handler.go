package handler

import (
	"sandy/internal/pkg/response"
	"sandy/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type AnalyticsHandler struct {
	uc usecase.AnalyticsUsecase
}

func NewAnalyticsHandler(uc usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/me", h.Me)
}

// RegisterAdminRoutes expects r to be staff-guarded already.
func (h *AnalyticsHandler) RegisterAdminRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/analytics", h.System)
	r.Post("/maintenance/cleanup", h.Cleanup)
}

func (h *AnalyticsHandler) Me(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	a, err := h.uc.User(c.Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}

func (h *AnalyticsHandler) System(c fiber.Ctx) error {
	a, err := h.uc.System(c.Context())
	if err != nil {
		return internalError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, a)
}

func (h *AnalyticsHandler) Cleanup(c fiber.Ctx) error {
	res, err := h.uc.Cleanup(c.Context())
	if err != nil {
		return internalError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{
		"deleted": res,
		"total":   res.Total(),
	})
}
