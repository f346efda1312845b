package handler

import (
	"errors"

	"sandy/internal/delivery/http/dto"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/domain/conversation"
	"sandy/internal/pkg/response"
	"sandy/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ChatHandler struct {
	uc usecase.ConversationUsecase
}

func NewChatHandler(uc usecase.ConversationUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

// RegisterRoutes mounts history, the caller's viewset and the per-user
// viewset.
func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/history", h.History)
	r.Delete("/history", h.ClearHistory)
	h.RegisterViewset(r.Group("/users/:user_id"))
	h.RegisterViewset(r)
}

// RegisterViewset mounts list, create and detail routes on r. r may carry a
// :user_id segment.
func (h *ChatHandler) RegisterViewset(r fiber.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Patch("/:id", h.PartialUpdate)
	r.Delete("/:id", h.Delete)
}

func (h *ChatHandler) List(c fiber.Ctx) error {
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
		return mapChatUsecaseError(err)
	}
	return paginated(c, items, total, page)
}

func (h *ChatHandler) Get(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	conv, err := h.uc.Get(c.Context(), scope, id)
	if err != nil {
		return mapChatUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, conv)
}

func (h *ChatHandler) Create(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	var req dto.ConversationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	conv, err := h.uc.Create(c.Context(), scope, req.Input())
	if err != nil {
		return mapChatUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, conv)
}

func (h *ChatHandler) Update(c fiber.Ctx) error {
	return h.update(c, false)
}

func (h *ChatHandler) PartialUpdate(c fiber.Ctx) error {
	return h.update(c, true)
}

func (h *ChatHandler) update(c fiber.Ctx, partial bool) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.ConversationRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	conv, err := h.uc.Update(c.Context(), scope, id, req.Input(), partial)
	if err != nil {
		return mapChatUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, conv)
}

func (h *ChatHandler) Delete(c fiber.Ctx) error {
	scope, err := scopeFrom(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), scope, id); err != nil {
		return mapChatUsecaseError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChatHandler) History(c fiber.Ctx) error {
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
		return mapChatUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ChatHandler) ClearHistory(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	n, err := h.uc.ClearHistory(c.Context(), userID)
	if err != nil {
		return mapChatUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"deleted": n})
}

func mapChatUsecaseError(err error) error {
	switch {
	case errors.Is(err, conversation.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Conversation not found", nil, err)
	case errors.Is(err, conversation.ErrInvalidMessageType):
		return middleware.NewAppError(fiber.StatusBadRequest, "message_type must be 'user' or 'assistant'", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "message_type and message_text are required", nil, err)
	default:
		return mapOwnershipError(err)
	}
}
