package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"sandy/internal/config"
	"sandy/internal/domain/user"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const sessionKeyPrefix = "session:"

const defaultSessionTTL = 60 * time.Second

var ErrUnavailable = errors.New("redis unavailable")

// CachedSession is the verified-session snapshot stored in Redis.
type CachedSession struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Verified  bool      `json:"is_verified"`
	Staff     bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (cs CachedSession) user() (user.User, error) {
	id, err := uuid.Parse(cs.UserID)
	if err != nil {
		return user.User{}, err
	}
	return user.User{
		ID:         id,
		Email:      cs.Email,
		FirstName:  cs.FirstName,
		LastName:   cs.LastName,
		IsVerified: cs.Verified,
		IsStaff:    cs.Staff,
		CreatedAt:  cs.CreatedAt,
	}, nil
}

// Redis is a session cache. A nil client turns every call into a miss.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	r := NewWithClient(client, cfg.SessionCacheTTL, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", client.Options().Addr).Msg("redis unavailable, bypassing session cache")
		_ = client.Close()
		r.client = nil
		r.warnedUnavailable.Store(true)
	}
	return r
}

func NewWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Redis{client: client, logger: logger.With().Str("component", "cache").Logger(), ttl: ttl}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn().Err(err).Msg("redis unavailable, bypassing session cache")
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

// SessionKey hashes the token so raw credentials never appear as keys.
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

func (r *Redis) GetSession(ctx context.Context, token string) (user.User, bool) {
	if r.isUnavailable() || token == "" {
		return user.User{}, false
	}

	var cs CachedSession
	ok, err := r.getJSON(ctx, SessionKey(token), &cs)
	if err != nil || !ok {
		return user.User{}, false
	}
	if !cs.ExpiresAt.IsZero() && time.Now().After(cs.ExpiresAt) {
		return user.User{}, false
	}
	u, err := cs.user()
	if err != nil {
		return user.User{}, false
	}
	return u, true
}

// SetSession caches u for the shorter of the configured TTL and the token's
// remaining lifetime.
func (r *Redis) SetSession(ctx context.Context, token string, u user.User, tokenTTL time.Duration) error {
	if r.isUnavailable() || token == "" {
		return nil
	}
	ttl := r.ttl
	if tokenTTL > 0 && tokenTTL < ttl {
		ttl = tokenTTL
	}
	if ttl <= 0 {
		return nil
	}

	cs := CachedSession{
		UserID:    u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Verified:  u.IsVerified,
		Staff:     u.IsStaff,
		CreatedAt: u.CreatedAt,
		ExpiresAt: time.Now().Add(ttl),
	}
	return r.setJSON(ctx, SessionKey(token), cs, ttl)
}

func (r *Redis) EvictSession(ctx context.Context, token string) error {
	if r.isUnavailable() || token == "" {
		return nil
	}
	if err := r.client.Del(ctx, SessionKey(token)).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// EvictAllSessions drops every cached session; used after bulk session
// cleanup where individual tokens are not known.
func (r *Redis) EvictAllSessions(ctx context.Context) error {
	if r.isUnavailable() {
		return nil
	}
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Error().Err(err).Str("key", k).Msg("redis delete failed")
		}
	}
	if err := iter.Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) getJSON(ctx context.Context, key string, out any) (bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}
