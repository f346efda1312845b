package handler

import (
	"errors"
	"strings"
	"time"

	"sandy/internal/delivery/http/dto"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/pkg/response"
	"sandy/internal/usecase"
	ucauth "sandy/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

// CookieConfig controls the auth-token cookie set on register and login.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	uc     usecase.AuthUsecase
	cookie CookieConfig
}

func NewAuthHandler(uc usecase.AuthUsecase, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultCookieName
	}
	return &AuthHandler{uc: uc, cookie: cookie}
}

// RegisterRoutes mounts the public endpoints under /users. limit guards the
// credential endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(r fiber.Router, limit fiber.Handler) {
	if r == nil {
		return
	}
	postLimited(r, "/register", limit, h.Register)
	postLimited(r, "/login", limit, h.Login)
}

// RegisterTokenRoutes mounts the token endpoints under /auth/token.
func (h *AuthHandler) RegisterTokenRoutes(r fiber.Router, limit fiber.Handler) {
	if r == nil {
		return
	}
	postLimited(r, "/", limit, h.Login)
	postLimited(r, "/refresh", limit, h.Refresh)
	r.Post("/verify", h.Verify)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	h.setCookie(c, out.AccessToken)
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, authResponse(out))
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return mapAuthUsecaseError(err)
	}

	h.setCookie(c, out.AccessToken)
	return response.Success(c, fiber.StatusOK, response.MessageOK, authResponse(out))
}

// Refresh reads the refresh token from the body, falling back to a bearer
// header.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			return err
		}
	}
	tok := strings.TrimSpace(req.Refresh)
	if tok == "" {
		var ok bool
		if tok, ok = bearerFromAuthorizationHeader(c.Get(fiber.HeaderAuthorization)); !ok {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
	}

	out, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
		}
		if errors.Is(err, usecase.ErrInvalidRefreshToken) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return internalError(err)
	}

	h.setCookie(c, out.AccessToken)
	return response.Success(c, fiber.StatusOK, response.MessageOK, authResponse(out))
}

func (h *AuthHandler) Verify(c fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Token) == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "token is required", nil, nil)
	}
	if _, err := h.uc.Authenticate(c.Context(), req.Token); err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Token is invalid or expired", nil, err)
		}
		return internalError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{})
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.uc.Logout(c.Context(), middleware.Token(c)); err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return internalError(err)
	}
	c.ClearCookie(h.cookie.Name)
	return response.Success(c, fiber.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) setCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func authResponse(out usecase.AuthTokens) dto.AuthResponse {
	return dto.AuthResponse{
		User:         dto.NewUserResponse(out.User),
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
}

func postLimited(r fiber.Router, path string, limit, h fiber.Handler) {
	if limit == nil {
		r.Post(path, h)
		return
	}
	r.Post(path, limit, h)
}

func bearerFromAuthorizationHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}

func mapAuthUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucauth.ErrMissingCredentials):
		return middleware.NewAppError(fiber.StatusBadRequest, "Email and password are required", nil, err)
	case errors.Is(err, ucauth.ErrWeakPassword):
		return middleware.NewAppError(fiber.StatusBadRequest, "Password must be at least 8 characters", nil, err)
	case errors.Is(err, ucauth.ErrPasswordTooLong):
		return middleware.NewAppError(fiber.StatusBadRequest, "Password must be at most 72 bytes", nil, err)
	case errors.Is(err, ucauth.ErrEmailAlreadyRegistered):
		return middleware.NewAppError(fiber.StatusBadRequest, "User already exists", nil, err)
	case errors.Is(err, ucauth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid credentials", nil, err)
	case errors.Is(err, ucauth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return internalError(err)
	}
}
