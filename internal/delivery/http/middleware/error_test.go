package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sandy/internal/logging"
	"sandy/internal/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(NewAccessLogMiddleware(logging.Nop()).Middleware())
	app.Use(NewErrorMiddleware(logging.Nop()).Middleware())
	app.Get("/conflict", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "", map[string]string{"email": "taken"}, nil)
	})
	app.Get("/internal", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "db password is hunter2", nil, errors.New("boom"))
	})
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("oops")
	})

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/conflict", fiber.StatusConflict, response.MessageConflict},
		{"/internal", fiber.StatusInternalServerError, response.MessageInternalServerError},
		{"/panic", fiber.StatusInternalServerError, response.MessageInternalServerError},
		{"/missing", fiber.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

			var body response.SemanticResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.status, body.Status)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}
