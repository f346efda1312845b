package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *HMACService {
	s := NewHMACService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newTestService(now)
	id := uuid.New()

	tok, err := s.GenerateAccessToken(id, "a@example.com")
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, id.String(), claims.LegacyID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.False(t, s.IsRefreshToken(claims))
	assert.Equal(t, time.Hour, claims.ExpiresIn(now))
}

func TestTokensMintedTogetherDiffer(t *testing.T) {
	s := newTestService(time.Now())
	id := uuid.New()

	a, err := s.GenerateAccessToken(id, "a@example.com")
	require.NoError(t, err)
	b, err := s.GenerateAccessToken(id, "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRefreshTokenUsesRefreshSecret(t *testing.T) {
	s := newTestService(time.Now())
	id := uuid.New()

	tok, err := s.GenerateRefreshToken(id)
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.True(t, s.IsRefreshToken(claims))

	other := NewHMACService("access-secret", "another", time.Hour, time.Hour)
	_, err = other.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_Expired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	s := newTestService(issued)
	tok, err := s.GenerateAccessToken(uuid.New(), "")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	s := newTestService(time.Now())
	_, err := s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGenerate_RejectsNilUser(t *testing.T) {
	s := newTestService(time.Now())
	_, err := s.GenerateAccessToken(uuid.Nil, "x@example.com")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
