package handler

import (
	"errors"
	"strconv"

	"sandy/internal/delivery/http/middleware"
	"sandy/internal/pkg/response"
	"sandy/internal/repository"
	"sandy/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

// scopeFrom pairs the caller with the :user_id route segment, when the route
// has one. A malformed segment names nobody, so it is reported as not found.
func scopeFrom(c fiber.Ctx) (usecase.Scope, error) {
	caller, err := currentUserID(c)
	if err != nil {
		return usecase.Scope{}, err
	}
	raw := c.Params("user_id")
	if raw == "" {
		return usecase.Own(caller), nil
	}
	path, err := uuid.Parse(raw)
	if err != nil {
		return usecase.Scope{}, middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
	}
	return usecase.Scope{Caller: caller, Path: path}, nil
}

func idParam(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, nil, err)
	}
	return id, nil
}

func pageFrom(c fiber.Ctx) (repository.Page, error) {
	limit, err := intQuery(c, "limit", repository.DefaultPageLimit)
	if err != nil {
		return repository.Page{}, err
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return repository.Page{}, err
	}
	if limit < 0 || offset < 0 {
		return repository.Page{}, middleware.NewAppError(fiber.StatusBadRequest, "limit and offset must be non-negative", nil, nil)
	}
	return repository.Page{Limit: limit, Offset: offset}.Normalize(), nil
}

func intQuery(c fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return v, nil
}

// bindBody decodes and validates the JSON body.
func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", middleware.ValidationDetails(err), err)
		}
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	return nil
}

func paginated[T any](c fiber.Ctx, items []T, total int64, page repository.Page) error {
	if items == nil {
		items = []T{}
	}
	return response.Paginated(c, items, total, page.Limit, page.Offset)
}

func internalError(err error) error {
	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}

// mapOwnershipError covers the errors every owned-resource usecase can return.
func mapOwnershipError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageBadRequest, nil, err)
	default:
		return internalError(err)
	}
}
