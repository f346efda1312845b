package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sandy/internal/delivery/http/handler"
	"sandy/internal/delivery/http/middleware"
	"sandy/internal/domain/conversation"
	"sandy/internal/domain/interaction"
	"sandy/internal/domain/profile"
	"sandy/internal/domain/recommendation"
	"sandy/internal/domain/user"
	"sandy/internal/logging"
	"sandy/internal/repository"
	"sandy/internal/service"
	"sandy/internal/usecase"
	ucauth "sandy/internal/usecase/auth"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = user.User{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Email: "alice@example.com"}
	staff = user.User{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002"), Email: "ops@example.com", IsStaff: true}
)

type fakeAuth struct {
	usecase.AuthUsecase
}

func (fakeAuth) Authenticate(_ context.Context, token string) (user.User, error) {
	switch token {
	case "alice":
		return alice, nil
	case "staff":
		return staff, nil
	}
	return user.User{}, usecase.ErrUnauthorized
}

func (fakeAuth) Register(_ context.Context, in ucauth.RegisterInput) (usecase.AuthTokens, error) {
	return usecase.AuthTokens{User: user.User{ID: uuid.New(), Email: in.Email}, AccessToken: "a", RefreshToken: "r"}, nil
}

func (fakeAuth) Login(_ context.Context, in ucauth.LoginInput) (usecase.AuthTokens, error) {
	return usecase.AuthTokens{User: alice, AccessToken: "alice", RefreshToken: "r"}, nil
}

type fakeUsers struct{}

func (fakeUsers) Me(_ context.Context, id uuid.UUID) (user.User, error) {
	return user.User{ID: id}, nil
}

type fakeProfiles struct {
	usecase.ProfileUsecase
}

func (fakeProfiles) ListDocuments(context.Context) ([]profile.Document, error) {
	return []profile.Document{}, nil
}

type fakeChat struct {
	usecase.ConversationUsecase
	scope usecase.Scope
}

func (f *fakeChat) List(_ context.Context, scope usecase.Scope, _ repository.Page) ([]conversation.Conversation, int64, error) {
	f.scope = scope
	return nil, 0, nil
}

type fakeRecs struct {
	usecase.RecommendationUsecase
	calls      []string
	feedbackID uuid.UUID
	helpful    bool
}

func (f *fakeRecs) Get(_ context.Context, _ usecase.Scope, id uuid.UUID) (recommendation.Recommendation, error) {
	f.calls = append(f.calls, "get")
	return recommendation.Recommendation{ID: id}, nil
}

func (f *fakeRecs) Feedback(_ context.Context, _, id uuid.UUID, wasHelpful bool, _ *string) error {
	f.calls = append(f.calls, "feedback")
	f.feedbackID, f.helpful = id, wasHelpful
	return nil
}

func (f *fakeRecs) History(context.Context, uuid.UUID, int) ([]recommendation.HistoryEntry, error) {
	f.calls = append(f.calls, "history")
	return []recommendation.HistoryEntry{}, nil
}

type fakeInteractions struct {
	usecase.InteractionUsecase
	days int
}

func (f *fakeInteractions) Stats(_ context.Context, _ uuid.UUID, days int) (map[string]interaction.TypeStats, error) {
	f.days = days
	return map[string]interaction.TypeStats{}, nil
}

type fakeAnalytics struct {
	cleanups int
}

func (f *fakeAnalytics) User(context.Context, uuid.UUID) (interaction.UserAnalytics, error) {
	return interaction.UserAnalytics{}, nil
}

func (f *fakeAnalytics) System(context.Context) (interaction.SystemAnalytics, error) {
	return interaction.SystemAnalytics{}, nil
}

func (f *fakeAnalytics) Cleanup(context.Context) (service.CleanupResult, error) {
	f.cleanups++
	return service.CleanupResult{}, nil
}

type healthy struct{}

func (healthy) HealthCheck(context.Context) service.Health {
	return service.Health{Status: service.StatusHealthy}
}

type fixture struct {
	app          *fiber.App
	chat         *fakeChat
	recs         *fakeRecs
	interactions *fakeInteractions
	analytics    *fakeAnalytics
}

func newFixture(t *testing.T, authLimit fiber.Handler) *fixture {
	t.Helper()
	f := &fixture{
		chat:         &fakeChat{},
		recs:         &fakeRecs{},
		interactions: &fakeInteractions{},
		analytics:    &fakeAnalytics{},
	}
	f.app = fiber.New(fiber.Config{
		JSONEncoder:     json.Marshal,
		JSONDecoder:     json.Unmarshal,
		StructValidator: middleware.NewStructValidator(),
	})
	f.app.Use(middleware.NewErrorMiddleware(logging.Nop()).Middleware())

	auth := fakeAuth{}
	NewRegistry(Handlers{
		Auth:           handler.NewAuthHandler(auth, handler.CookieConfig{}),
		User:           handler.NewUserHandler(fakeUsers{}),
		Profile:        handler.NewProfileHandler(fakeProfiles{}),
		Chat:           handler.NewChatHandler(f.chat),
		Recommendation: handler.NewRecommendationHandler(f.recs),
		Interaction:    handler.NewInteractionHandler(f.interactions),
		Analytics:      handler.NewAnalyticsHandler(f.analytics),
		Health:         handler.NewHealthHandler(healthy{}, nil),
		AuthMiddleware: middleware.NewAuthMiddleware(auth, "", logging.Nop()),
		AuthLimit:      authLimit,
	}).Register(f.app)
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestRoutes_PublicAndProtectedUsers(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/health", "", nil))
	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/health/", "", nil))

	assert.Equal(t, fiber.StatusCreated, f.do(t, http.MethodPost, "/api/users/register/", "", map[string]string{"email": "n@example.com", "password": "password1"}))
	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodPost, "/api/users/login/", "", map[string]string{"email": "a", "password": "b"}))
	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodPost, "/api/auth/token/", "", map[string]string{"email": "a", "password": "b"}))

	assert.Equal(t, fiber.StatusUnauthorized, f.do(t, http.MethodGet, "/api/users/me/", "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, f.do(t, http.MethodGet, "/api/users/me/", "bogus", nil))
	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/users/me/", "alice", nil))
}

func TestRoutes_ChatUserAliases(t *testing.T) {
	f := newFixture(t, nil)
	other := uuid.New()

	for _, path := range []string{
		"/api/users/" + other.String() + "/chat/",
		"/api/chat/users/" + other.String() + "/",
	} {
		f.chat.scope = usecase.Scope{}
		assert.Equal(t, fiber.StatusUnauthorized, f.do(t, http.MethodGet, path, "", nil), path)
		require.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, path, "alice", nil), path)
		assert.Equal(t, usecase.Scope{Caller: alice.ID, Path: other}, f.chat.scope, path)
	}

	require.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/chat/", "alice", nil))
	assert.Equal(t, usecase.Own(alice.ID), f.chat.scope)
}

func TestRoutes_RecommendationFeedbackAndViewset(t *testing.T) {
	f := newFixture(t, nil)
	id := uuid.New()

	require.Equal(t, fiber.StatusOK, f.do(t, http.MethodPost, "/api/recommendations/"+id.String()+"/feedback/", "alice", map[string]any{"was_helpful": true}))
	assert.Equal(t, id, f.recs.feedbackID)
	assert.True(t, f.recs.helpful)

	assert.Equal(t, fiber.StatusBadRequest, f.do(t, http.MethodPost, "/api/recommendations/"+id.String()+"/feedback/", "alice", map[string]any{}))

	require.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/recommendations/history/", "alice", nil))
	require.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/recommendations/"+id.String(), "alice", nil))
	assert.Equal(t, []string{"feedback", "history", "get"}, f.recs.calls)
}

func TestRoutes_InteractionStatsDefaultsTo30Days(t *testing.T) {
	f := newFixture(t, nil)

	require.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/interactions/stats/", "alice", nil))
	assert.Equal(t, usecase.DefaultStatsDays, f.interactions.days)

	require.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/interactions/stats/?days=7", "alice", nil))
	assert.Equal(t, 7, f.interactions.days)

	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/analytics/me/", "alice", nil))
}

func TestRoutes_AdminRequiresStaff(t *testing.T) {
	f := newFixture(t, nil)

	admin := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/analytics/"},
		{http.MethodGet, "/api/admin/profiles/"},
		{http.MethodPost, "/api/admin/maintenance/cleanup/"},
	}
	for _, r := range admin {
		assert.Equal(t, fiber.StatusUnauthorized, f.do(t, r.method, r.path, "", nil), r.path)
		assert.Equal(t, fiber.StatusForbidden, f.do(t, r.method, r.path, "alice", nil), r.path)
		assert.Equal(t, fiber.StatusOK, f.do(t, r.method, r.path, "staff", nil), r.path)
	}
	assert.Equal(t, 1, f.analytics.cleanups)
}

func TestRoutes_AuthRateLimit(t *testing.T) {
	f := newFixture(t, limiter.New(limiter.Config{Max: 1, Expiration: time.Minute}))
	creds := map[string]string{"email": "a", "password": "b"}

	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodPost, "/api/users/login/", "", creds))
	assert.Equal(t, fiber.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/users/login/", "", creds))

	// Authenticated routes are not behind the credential limiter.
	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/users/me/", "alice", nil))
	assert.Equal(t, fiber.StatusOK, f.do(t, http.MethodGet, "/api/users/me/", "alice", nil))
}
