package usecase

import (
	"context"
	"fmt"

	"sandy/internal/domain/interaction"
	"sandy/internal/metrics"
	"sandy/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AnalyticsStore interface {
	GetUserAnalytics(ctx context.Context, userID uuid.UUID) (interaction.UserAnalytics, error)
	GetSystemAnalytics(ctx context.Context) (interaction.SystemAnalytics, error)
	CleanupOldData(ctx context.Context) (service.CleanupResult, error)
}

// SessionEvicter drops every cached session after a cleanup run.
type SessionEvicter interface {
	EvictAllSessions(ctx context.Context) error
}

type AnalyticsUsecase interface {
	User(ctx context.Context, userID uuid.UUID) (interaction.UserAnalytics, error)
	System(ctx context.Context) (interaction.SystemAnalytics, error)
	Cleanup(ctx context.Context) (service.CleanupResult, error)
}

type Analytics struct {
	store   AnalyticsStore
	cache   SessionEvicter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewAnalyticsUsecase(store AnalyticsStore, cache SessionEvicter, m *metrics.Metrics, logger zerolog.Logger) *Analytics {
	return &Analytics{
		store:   store,
		cache:   cache,
		metrics: m,
		logger:  logger.With().Str("component", "analytics").Logger(),
	}
}

func (u *Analytics) User(ctx context.Context, userID uuid.UUID) (interaction.UserAnalytics, error) {
	a, err := u.store.GetUserAnalytics(ctx, userID)
	if err != nil {
		return interaction.UserAnalytics{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return a, nil
}

func (u *Analytics) System(ctx context.Context) (interaction.SystemAnalytics, error) {
	a, err := u.store.GetSystemAnalytics(ctx)
	if err != nil {
		return interaction.SystemAnalytics{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return a, nil
}

// Cleanup applies the retention windows. Cached sessions are dropped whenever
// an expired session row was removed.
func (u *Analytics) Cleanup(ctx context.Context) (service.CleanupResult, error) {
	res, err := u.store.CleanupOldData(ctx)
	if err != nil {
		return service.CleanupResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	u.metrics.CleanupRows("conversations", res.Conversations)
	u.metrics.CleanupRows("user_interactions", res.Interactions)
	u.metrics.CleanupRows("user_sessions", res.Sessions)

	if res.Sessions > 0 && u.cache != nil {
		if err := u.cache.EvictAllSessions(ctx); err != nil {
			u.logger.Warn().Err(err).Msg("session cache flush failed")
		}
	}
	return res, nil
}
