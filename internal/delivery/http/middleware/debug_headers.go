package middleware

import (
	"strings"

	"sandy/internal/logging"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

var debugHeaderNames = []string{
	fiber.HeaderAuthorization,
	HeaderAuthToken,
	fiber.HeaderOrigin,
	fiber.HeaderContentType,
	fiber.HeaderUserAgent,
}

// DebugHeaders logs the credential headers sent to the paths it watches.
// Credential values are truncated.
func DebugHeaders(logger zerolog.Logger, paths ...string) fiber.Handler {
	watch := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		watch[strings.TrimSuffix(p, "/")] = struct{}{}
	}
	return func(c fiber.Ctx) error {
		if _, ok := watch[strings.TrimSuffix(c.Path(), "/")]; !ok {
			return c.Next()
		}
		d := zerolog.Dict()
		for _, h := range debugHeaderNames {
			v := c.Get(h)
			if v == "" {
				continue
			}
			if h == fiber.HeaderAuthorization || h == HeaderAuthToken {
				v = logging.Redact(v)
			}
			d = d.Str(h, v)
		}
		logger.Debug().
			Str("rid", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Bool("has_cookie", c.Get(fiber.HeaderCookie) != "").
			Dict("headers", d).
			Msg("request headers")
		return c.Next()
	}
}
