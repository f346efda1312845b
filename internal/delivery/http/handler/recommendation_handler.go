package handler

import (
	"errors"

	"sandy/internal/delivery/http/dto"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/domain/recommendation"
	"sandy/internal/pkg/response"
	"sandy/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type RecommendationHandler struct {
	uc usecase.RecommendationUsecase
}

func NewRecommendationHandler(uc usecase.RecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/history", h.History)
	r.Post("/:id/feedback", h.Feedback)
	h.registerViewset(r.Group("/users/:user_id"))
	h.registerViewset(r)
}

func (h *RecommendationHandler) registerViewset(r fiber.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Patch("/:id", h.PartialUpdate)
	r.Delete("/:id", h.Delete)
}

func (h *RecommendationHandler) List(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	items, total, err := h.uc.List(c.Context(), scope, page)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return paginated(c, items, total, page)
}

func (h *RecommendationHandler) Get(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rec, err := h.uc.Get(c.Context(), scope, id)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, rec)
}

func (h *RecommendationHandler) Create(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	var req dto.RecommendationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	rec, err := h.uc.Create(c.Context(), scope, req.Input())
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, rec)
}

func (h *RecommendationHandler) Update(c fiber.Ctx) error {
	return h.update(c, false)
}

func (h *RecommendationHandler) PartialUpdate(c fiber.Ctx) error {
	return h.update(c, true)
}

func (h *RecommendationHandler) update(c fiber.Ctx, partial bool) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.RecommendationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	rec, err := h.uc.Update(c.Context(), scope, id, req.Input(), partial)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, rec)
}

func (h *RecommendationHandler) Delete(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), scope, id); err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RecommendationHandler) Feedback(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.uc.Feedback(c.Context(), userID, id, *req.WasHelpful, req.Feedback); err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Feedback recorded", fiber.Map{"id": id, "was_helpful": *req.WasHelpful})
}

func (h *RecommendationHandler) History(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	items, err := h.uc.History(c.Context(), userID, limit)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func mapRecommendationUsecaseError(err error) error {
	switch {
	case errors.Is(err, recommendation.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Recommendation not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "recommendation_data is required", nil, err)
	default:
		return mapOwnershipError(err)
	}
}
