package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sandy/internal/domain/user"
	"sandy/internal/logging"
	"sandy/internal/metrics"
	"sandy/internal/pkg/jwt"
	ucauth "sandy/internal/usecase/auth"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
)

// SessionStore is the session half of PostgresService.
type SessionStore interface {
	ucauth.Store

	IssueSession(ctx context.Context, u user.User) (string, error)
	VerifyToken(ctx context.Context, token string) (user.User, time.Time, error)
	Logout(ctx context.Context, token string) (bool, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type SessionCache interface {
	GetSession(ctx context.Context, token string) (user.User, bool)
	SetSession(ctx context.Context, token string, u user.User, ttl time.Duration) error
	EvictSession(ctx context.Context, token string) error
}

// AuthTokens is what register, login and refresh hand back.
type AuthTokens struct {
	User         user.User
	AccessToken  string
	RefreshToken string
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (AuthTokens, error)
	Login(ctx context.Context, in ucauth.LoginInput) (AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (AuthTokens, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (user.User, error)
}

type Auth struct {
	authSvc  *ucauth.Service
	sessions SessionStore
	cache    SessionCache
	jwt      jwt.Service
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	now func() time.Time
}

func NewAuthUsecase(sessions SessionStore, cache SessionCache, jwtSvc jwt.Service, m *metrics.Metrics, logger zerolog.Logger) *Auth {
	return &Auth{
		authSvc:  ucauth.NewService(sessions),
		sessions: sessions,
		cache:    cache,
		jwt:      jwtSvc,
		metrics:  m,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (AuthTokens, error) {
	res, err := u.authSvc.Register(ctx, in)
	if err != nil {
		return AuthTokens{}, err
	}
	u.metrics.AuthEvent("register")
	return u.withRefresh(res)
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (AuthTokens, error) {
	res, err := u.authSvc.Login(ctx, in)
	if err != nil {
		if errors.Is(err, ucauth.ErrInvalidCredentials) {
			u.metrics.AuthEvent("login_failed")
		}
		return AuthTokens{}, err
	}
	u.metrics.AuthEvent("login")
	return u.withRefresh(res)
}

// Refresh rotates the pair: a new access token backed by a new session and a
// new refresh token.
func (u *Auth) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if refreshToken == "" {
		return AuthTokens{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AuthTokens{}, ErrRefreshTokenExpired
		}
		return AuthTokens{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return AuthTokens{}, ErrInvalidRefreshToken
	}

	usr, err := u.sessions.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return AuthTokens{}, ErrUnauthorized
		}
		return AuthTokens{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	access, err := u.sessions.IssueSession(ctx, usr)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	u.metrics.AuthEvent("refresh")
	return u.withRefresh(user.AuthResult{User: usr.Sanitized(), Token: access})
}

// Logout revokes the session behind token and evicts it from the cache.
func (u *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	if _, err := u.sessions.Logout(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if u.cache != nil {
		if err := u.cache.EvictSession(ctx, token); err != nil {
			u.logger.Warn().Err(err).Msg("session cache evict failed")
		}
	}
	u.metrics.AuthEvent("logout")
	return nil
}

// Authenticate accepts an access token whose session row is still live. A
// cache hit skips the database.
func (u *Auth) Authenticate(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(token)
	if err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return user.User{}, fmt.Errorf("%w: not an access token", ErrUnauthorized)
	}

	if u.cache != nil {
		if cached, ok := u.cache.GetSession(ctx, token); ok && cached.ID == claims.UserID {
			return cached, nil
		}
	}

	usr, sessionExpires, err := u.sessions.VerifyToken(ctx, token)
	if err != nil {
		if isAuthFailure(err) {
			u.logger.Debug().Str("token", logging.Redact(token)).Err(err).Msg("token rejected")
			return user.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return user.User{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if u.cache != nil {
		now := u.now()
		ttl := claims.ExpiresIn(now)
		if left := sessionExpires.Sub(now); left < ttl {
			ttl = left
		}
		if err := u.cache.SetSession(ctx, token, usr, ttl); err != nil {
			u.logger.Warn().Err(err).Msg("session cache write failed")
		}
	}
	return usr, nil
}

func (u *Auth) withRefresh(res user.AuthResult) (AuthTokens, error) {
	refresh, err := u.jwt.GenerateRefreshToken(res.User.ID)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return AuthTokens{User: res.User, AccessToken: res.Token, RefreshToken: refresh}, nil
}

func isAuthFailure(err error) bool {
	return errors.Is(err, jwt.ErrTokenInvalid) ||
		errors.Is(err, jwt.ErrTokenExpired) ||
		errors.Is(err, user.ErrSessionNotFound)
}
