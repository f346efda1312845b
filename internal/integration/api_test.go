//go:build integration

package integration

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sandy/internal/app"
	"sandy/internal/config"
	"sandy/internal/logging"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	User struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type pageData struct {
	Count   int64             `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// startStack runs Postgres and Redis and points the config loader at them.
func startStack(t *testing.T) config.Config {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("sandy"),
		tcpostgres.WithUsername("sandy"),
		tcpostgres.WithPassword("sandy"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, pg)

	pgHost, err := pg.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	rc, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, rc)

	uri, err := rc.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	redisHost, redisPort, _ := strings.Cut(opts.Addr, ":")

	t.Setenv("APP_NAME", "sandy-it")
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("JWT_SECRET", "integration-secret")
	t.Setenv("BCRYPT_ROUNDS", "4")
	t.Setenv("AUTH_RATE_LIMIT_MAX", "0")
	t.Setenv("DB_HOST", pgHost)
	t.Setenv("DB_PORT", pgPort.Port())
	t.Setenv("DB_NAME", "sandy")
	t.Setenv("DB_USER", "sandy")
	t.Setenv("DB_PASSWORD", "sandy")
	t.Setenv("REDIS_HOST", redisHost)
	t.Setenv("REDIS_PORT", redisPort)

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

type client struct {
	t     *testing.T
	app   *app.App
	token string
}

func (c *client) do(method, path string, body any) (int, semanticResponse) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.app.Fiber.Test(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env semanticResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (c *client) register(email string) authData {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/users/register/", map[string]string{
		"email": email, "password": "correct-horse", "first_name": "Test",
	})
	require.Equal(c.t, http.StatusCreated, status, env.Message)
	var out authData
	require.NoError(c.t, json.Unmarshal(env.Data, &out))
	return out
}

func TestIntegration_API(t *testing.T) {
	cfg := startStack(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a, closeFn, err := app.Bootstrap(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	status, _ := (&client{t: t, app: a}).do(http.MethodGet, "/api/health/", nil)
	require.Equal(t, http.StatusOK, status)

	alice := &client{t: t, app: a}
	aliceAuth := alice.register("Alice@Example.com")
	assert.Equal(t, "alice@example.com", aliceAuth.User.Email)
	alice.token = aliceAuth.AccessToken

	bob := &client{t: t, app: a}
	bob.token = bob.register("bob@example.com").AccessToken

	t.Run("duplicate email", func(t *testing.T) {
		status, env := (&client{t: t, app: a}).do(http.MethodPost, "/api/users/register/", map[string]string{
			"email": "alice@example.com", "password": "correct-horse",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "User already exists", env.Message)
	})

	t.Run("me", func(t *testing.T) {
		status, env := alice.do(http.MethodGet, "/api/users/me/", nil)
		require.Equal(t, http.StatusOK, status)
		var me struct {
			ID uuid.UUID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, aliceAuth.User.ID, me.ID)
	})

	t.Run("chat ownership", func(t *testing.T) {
		status, _ := alice.do(http.MethodPost, "/api/chat/", map[string]string{"message_type": "user", "message_text": "hello"})
		require.Equal(t, http.StatusCreated, status)
		status, _ = alice.do(http.MethodPost, "/api/chat/", map[string]string{"message_type": "assistant", "message_text": "hi there"})
		require.Equal(t, http.StatusCreated, status)

		status, env := alice.do(http.MethodGet, "/api/chat/", nil)
		require.Equal(t, http.StatusOK, status)
		var page pageData
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.EqualValues(t, 2, page.Count)

		status, env = bob.do(http.MethodGet, "/api/users/"+aliceAuth.User.ID.String()+"/chat/", nil)
		require.Equal(t, http.StatusOK, status)
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Zero(t, page.Count)

		status, env = bob.do(http.MethodPost, "/api/chat/users/"+aliceAuth.User.ID.String()+"/", map[string]string{"message_type": "user", "message_text": "x"})
		require.Equal(t, http.StatusCreated, status)
		var created struct {
			User uuid.UUID `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &created))
		assert.NotEqual(t, aliceAuth.User.ID, created.User)

		status, env = alice.do(http.MethodGet, "/api/chat/history/?limit=10", nil)
		require.Equal(t, http.StatusOK, status)
		var history []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &history))
		require.Len(t, history, 2)
		assert.Equal(t, "hello", history[0].Content)
	})

	t.Run("interactions", func(t *testing.T) {
		status, _ := alice.do(http.MethodPost, "/api/interactions/", map[string]any{"interaction_type": "voice", "success": false})
		require.Equal(t, http.StatusCreated, status)
		status, _ = alice.do(http.MethodPost, "/api/interactions/", map[string]any{"interaction_type": "voice"})
		require.Equal(t, http.StatusCreated, status)

		status, env := alice.do(http.MethodGet, "/api/interactions/stats/", nil)
		require.Equal(t, http.StatusOK, status)
		var stats map[string]struct {
			Count       int64   `json:"count"`
			SuccessRate float64 `json:"success_rate"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &stats))
		assert.EqualValues(t, 2, stats["voice"].Count)
		assert.InDelta(t, 50.0, stats["voice"].SuccessRate, 0.01)
	})

	t.Run("admin is staff only", func(t *testing.T) {
		status, _ := alice.do(http.MethodGet, "/api/admin/analytics/", nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("logout revokes", func(t *testing.T) {
		status, _ := bob.do(http.MethodPost, "/api/users/logout/", nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = bob.do(http.MethodGet, "/api/users/me/", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
