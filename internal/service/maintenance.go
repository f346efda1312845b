package service

import (
	"context"
	"fmt"
	"time"

	"sandy/internal/database"
	"sandy/internal/database/migration"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Initialize creates the extension, tables and indexes if they are missing.
func (s *PostgresService) Initialize(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	ddl, err := migration.InitSQL()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	err = database.WithTx(ctx, s.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx, ddl)
		return err
	})
	if err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	s.logger.Info().Msg("schema initialized")
	return nil
}

// CleanupResult counts rows removed per table.
type CleanupResult struct {
	Conversations int64 `json:"conversations"`
	Interactions  int64 `json:"user_interactions"`
	Sessions      int64 `json:"user_sessions"`
}

func (r CleanupResult) Total() int64 {
	return r.Conversations + r.Interactions + r.Sessions
}

func (s *PostgresService) CleanupOldData(ctx context.Context) (CleanupResult, error) {
	if err := s.ready(); err != nil {
		return CleanupResult{}, err
	}
	var res CleanupResult
	err := database.WithTx(ctx, s.db, func(tx database.Tx) error {
		var err error
		res.Conversations, err = tx.Exec(ctx,
			`DELETE FROM conversations WHERE timestamp < NOW() - make_interval(days => $1)`,
			s.opts.ConversationRetainDays)
		if err != nil {
			return fmt.Errorf("delete conversations: %w", err)
		}
		res.Interactions, err = tx.Exec(ctx,
			`DELETE FROM user_interactions WHERE timestamp < NOW() - make_interval(days => $1)`,
			s.opts.AnalyticsRetainDays)
		if err != nil {
			return fmt.Errorf("delete interactions: %w", err)
		}
		res.Sessions, err = tx.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at < NOW()`)
		if err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return CleanupResult{}, err
	}

	s.logger.Info().
		Int64("conversations", res.Conversations).
		Int64("interactions", res.Interactions).
		Int64("sessions", res.Sessions).
		Msg("old data cleaned up")
	return res, nil
}

type Health struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details"`
}

func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

func (s *PostgresService) HealthCheck(ctx context.Context) Health {
	if err := s.ready(); err != nil {
		return Health{Status: StatusUnhealthy, Details: map[string]any{"error": err.Error()}}
	}
	start := s.now()
	var one int
	if err := s.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return Health{Status: StatusUnhealthy, Details: map[string]any{"error": err.Error()}}
	}
	elapsed := s.now().Sub(start)

	st := s.db.Stats()
	return Health{
		Status: StatusHealthy,
		Details: map[string]any{
			"responseTimeMs": elapsed.Round(time.Millisecond).Milliseconds(),
			"totalConns":     st.TotalConns,
			"idleConns":      st.IdleConns,
		},
	}
}
