package handler

import (
	"errors"

	"sandy/internal/delivery/http/dto"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/pkg/response"
	"sandy/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type InteractionHandler struct {
	uc usecase.InteractionUsecase
}

func NewInteractionHandler(uc usecase.InteractionUsecase) *InteractionHandler {
	return &InteractionHandler{uc: uc}
}

func (h *InteractionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/stats", h.Stats)
	r.Get("/", h.List)
	r.Post("/", h.Record)
}

func (h *InteractionHandler) Record(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.InteractionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	id, err := h.uc.Record(c.Context(), userID, req.Input())
	if err != nil {
		return mapInteractionUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, fiber.Map{"id": id})
}

func (h *InteractionHandler) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	items, total, err := h.uc.List(c.Context(), userID, page)
	if err != nil {
		return mapInteractionUsecaseError(err)
	}
	return paginated(c, items, total, page)
}

func (h *InteractionHandler) Stats(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	days, err := intQuery(c, "days", usecase.DefaultStatsDays)
	if err != nil {
		return err
	}
	stats, err := h.uc.Stats(c.Context(), userID, days)
	if err != nil {
		return mapInteractionUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}

func mapInteractionUsecaseError(err error) error {
	if errors.Is(err, usecase.ErrInvalidInput) {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid interaction", nil, err)
	}
	return internalError(err)
}
