package middleware

import (
	"context"
	"errors"
	"strings"

	"sandy/internal/domain/user"
	"sandy/internal/logging"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
	CtxStaffKey  = "is_staff"
	CtxTokenKey  = "auth_token"

	HeaderAuthToken   = "X-Auth-Token"
	DefaultCookieName = "auth-token"

	msgBadAuthHeader = "Authorization header must contain two space-delimited values"
)

var errBadAuthHeader = errors.New("bad authorization header")

// Authenticator resolves an access token to its user. The auth usecase
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.User, error)
}

type AuthMiddleware struct {
	auth       Authenticator
	cookieName string
	logger     zerolog.Logger
}

func NewAuthMiddleware(auth Authenticator, cookieName string, logger zerolog.Logger) *AuthMiddleware {
	if strings.TrimSpace(cookieName) == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		auth:       auth,
		cookieName: cookieName,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// Middleware rejects anonymous requests with 401.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		usr, token, err := m.authenticate(c)
		if err != nil {
			if errors.Is(err, errBadAuthHeader) {
				return NewAppError(fiber.StatusUnauthorized, msgBadAuthHeader, nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}
		if token == "" {
			return NewAppError(fiber.StatusUnauthorized, "Authentication credentials were not provided", nil, nil)
		}

		c.Locals(CtxUserIDKey, usr.ID)
		c.Locals(CtxEmailKey, usr.Email)
		c.Locals(CtxStaffKey, usr.IsStaff)
		c.Locals(CtxTokenKey, token)

		return c.Next()
	}
}

// authenticate tries the query parameter, then the cookie, then the headers.
// A bad query or cookie token falls through to the next source; the header is
// the last word. An empty token with a nil error means anonymous.
func (m *AuthMiddleware) authenticate(c fiber.Ctx) (user.User, string, error) {
	if tok := strings.TrimSpace(c.Query("token")); tok != "" {
		usr, err := m.auth.Authenticate(c.Context(), tok)
		if err == nil {
			return usr, tok, nil
		}
		m.logger.Debug().Str("source", "query").Str("token", logging.Redact(tok)).Err(err).Msg("token rejected")
	}

	if tok := strings.TrimSpace(c.Cookies(m.cookieName)); tok != "" {
		usr, err := m.auth.Authenticate(c.Context(), tok)
		if err == nil {
			return usr, tok, nil
		}
		m.logger.Debug().Str("source", "cookie").Str("token", logging.Redact(tok)).Err(err).Msg("token rejected")
	}

	tok, err := rawTokenFromHeader(authHeader(c))
	if err != nil || tok == "" {
		return user.User{}, "", err
	}
	usr, err := m.auth.Authenticate(c.Context(), tok)
	if err != nil {
		m.logger.Debug().Str("source", "header").Str("token", logging.Redact(tok)).Err(err).Msg("token rejected")
		return user.User{}, "", err
	}
	return usr, tok, nil
}

// authHeader prefers Authorization and falls back to X-Auth-Token, which may
// omit the Bearer prefix.
func authHeader(c fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		return h
	}
	h := c.Get(HeaderAuthToken)
	if h == "" {
		return ""
	}
	if !strings.HasPrefix(h, "Bearer ") {
		h = "Bearer " + h
	}
	return h
}

func rawTokenFromHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", nil
	}
	if parts[0] != "Bearer" {
		return "", nil
	}
	if len(parts) != 2 {
		return "", errBadAuthHeader
	}
	return parts[1], nil
}

// RequireStaff must run after the auth middleware.
func RequireStaff() fiber.Handler {
	return func(c fiber.Ctx) error {
		if staff, _ := c.Locals(CtxStaffKey).(bool); !staff {
			return NewAppError(fiber.StatusForbidden, "Staff access required", nil, nil)
		}
		return c.Next()
	}
}

func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func Token(c fiber.Ctx) string {
	tok, _ := c.Locals(CtxTokenKey).(string)
	return tok
}
