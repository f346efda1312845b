// Package service holds PostgresService, the hand-written SQL layer over the
// shared pool. It owns users, sessions, profile documents, conversation
// history, interaction statistics, recommendation feedback, analytics and
// retention cleanup.
package service

import (
	"errors"
	"time"

	"sandy/internal/config"
	"sandy/internal/database"
	"sandy/internal/pkg/jwt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

const (
	defaultHistoryLimit        = 50
	defaultRecommendationLimit = 20
	defaultStatsDays           = 30
	systemAnalyticsDays        = 30
)

type Options struct {
	BcryptRounds           int
	SessionTTL             time.Duration
	ConversationRetainDays int
	AnalyticsRetainDays    int
}

// OptionsFromConfig maps the auth and retention sections onto service options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		BcryptRounds:           cfg.Auth.BcryptRounds,
		SessionTTL:             cfg.Auth.SessionLifetime(),
		ConversationRetainDays: cfg.Retention.ConversationDays,
		AnalyticsRetainDays:    cfg.Retention.AnalyticsDays,
	}
}

type PostgresService struct {
	db     database.DB
	jwt    jwt.Service
	opts   Options
	logger zerolog.Logger

	now func() time.Time
}

func NewPostgresService(db database.DB, jwtSvc jwt.Service, opts Options, logger zerolog.Logger) *PostgresService {
	if opts.BcryptRounds < bcrypt.MinCost {
		opts.BcryptRounds = bcrypt.MinCost
	}
	if opts.BcryptRounds > bcrypt.MaxCost {
		opts.BcryptRounds = bcrypt.MaxCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.ConversationRetainDays <= 0 {
		opts.ConversationRetainDays = 90
	}
	if opts.AnalyticsRetainDays <= 0 {
		opts.AnalyticsRetainDays = 365
	}
	return &PostgresService{
		db:     db,
		jwt:    jwtSvc,
		opts:   opts,
		logger: logger.With().Str("component", "postgres_service").Logger(),
		now:    time.Now,
	}
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) ready() error {
	if s == nil || s.db == nil {
		return database.ErrNilDB
	}
	return nil
}

// encodeJSON returns nil for a nil map so nullable JSONB columns stay NULL.
func encodeJSON(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeJSON(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
