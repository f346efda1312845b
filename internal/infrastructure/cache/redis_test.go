package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"sandy/internal/domain/user"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey_HashesToken(t *testing.T) {
	k := SessionKey("eyJhbGciOi.secret.part")
	assert.True(t, strings.HasPrefix(k, "session:"))
	assert.Len(t, k, len("session:")+64)
	assert.NotContains(t, k, "secret")
	assert.Equal(t, k, SessionKey("eyJhbGciOi.secret.part"))
	assert.NotEqual(t, k, SessionKey("other"))
}

func TestRedis_UnavailableBypasses(t *testing.T) {
	ctx := context.Background()
	r := NewWithClient(nil, time.Minute, zerolog.Nop())

	_, ok := r.GetSession(ctx, "tok")
	assert.False(t, ok)
	require.NoError(t, r.SetSession(ctx, "tok", user.User{ID: uuid.New()}, time.Hour))
	require.NoError(t, r.EvictSession(ctx, "tok"))
	require.NoError(t, r.EvictAllSessions(ctx))
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	var nilCache *Redis
	_, ok = nilCache.GetSession(ctx, "tok")
	assert.False(t, ok)
}

func TestCachedSession_User(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	cs := CachedSession{UserID: id.String(), Email: "a@b.c", Staff: true, CreatedAt: created}

	u, err := cs.user()
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.IsStaff)
	assert.Equal(t, created, u.CreatedAt)

	_, err = CachedSession{UserID: "nope"}.user()
	assert.Error(t, err)
}
