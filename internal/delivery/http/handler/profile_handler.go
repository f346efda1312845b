package handler

import (
	"errors"

	"sandy/internal/delivery/http/dto"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/domain/profile"
	"sandy/internal/pkg/response"
	"sandy/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// RegisterRoutes mounts the viewset under /profiles and the document
// endpoints under /document.
func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	profiles := r.Group("/profiles")
	profiles.Get("/", h.List)
	profiles.Post("/", h.Create)
	profiles.Get("/:id", h.Get)
	profiles.Put("/:id", h.Update)
	profiles.Patch("/:id", h.Update)
	profiles.Delete("/:id", h.Delete)

	doc := r.Group("/document")
	doc.Get("/", h.GetDocument)
	doc.Put("/", h.SaveDocument)
	doc.Delete("/", h.DeleteDocument)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	if items == nil {
		items = []profile.UserProfile{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) Create(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.ProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	p, err := h.uc.Create(c.Context(), userID, req.Input())
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, p)
}

// Update serves both PUT and PATCH; only the fields sent are changed.
func (h *ProfileHandler) Update(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.ProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	p, err := h.uc.Update(c.Context(), userID, id, req.Input())
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return mapProfileUsecaseError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfileHandler) GetDocument(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	doc, err := h.uc.GetDocument(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, doc)
}

func (h *ProfileHandler) SaveDocument(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var doc profile.Document
	if err := c.Bind().Body(&doc); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	saved, err := h.uc.SaveDocument(c.Context(), userID, doc)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, saved)
}

func (h *ProfileHandler) DeleteDocument(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.uc.DeleteDocument(c.Context(), userID); err != nil {
		return mapProfileUsecaseError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListDocuments is staff only.
func (h *ProfileHandler) ListDocuments(c fiber.Ctx) error {
	docs, err := h.uc.ListDocuments(c.Context())
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	if docs == nil {
		docs = []profile.Document{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, docs)
}

func mapProfileUsecaseError(err error) error {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, profile.ErrAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Profile already exists for this user", nil, err)
	default:
		return mapOwnershipError(err)
	}
}
