package service

import (
	"context"
	"fmt"
	"strings"

	"sandy/internal/domain/interaction"

	"github.com/google/uuid"
)

func (s *PostgresService) RecordInteraction(ctx context.Context, userID uuid.UUID, interactionType string, data map[string]any, success bool) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	interactionType = strings.TrimSpace(interactionType)
	if interactionType == "" || len(interactionType) > 50 {
		return uuid.Nil, ErrInvalidInput
	}
	raw, err := encodeJSON(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode interaction: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx, `
		INSERT INTO user_interactions (user_id, interaction_type, interaction_data, success)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		userID, interactionType, raw, success,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert interaction: %w", err)
	}
	return id, nil
}

// GetInteractionStats groups the user's interactions of the last days days by
// type. SuccessRate is a percentage.
func (s *PostgresService) GetInteractionStats(ctx context.Context, userID uuid.UUID, days int) (map[string]interaction.TypeStats, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultStatsDays
	}

	rows, err := s.db.Query(ctx, `
		SELECT interaction_type, COUNT(*), COUNT(*) FILTER (WHERE success)
		FROM user_interactions
		WHERE user_id = $1 AND timestamp > NOW() - make_interval(days => $2)
		GROUP BY interaction_type`, userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("interaction stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string]interaction.TypeStats)
	for rows.Next() {
		var (
			typ string
			st  interaction.TypeStats
		)
		if err := rows.Scan(&typ, &st.Count, &st.Successful); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.SuccessRate = successRate(st.Successful, st.Count)
		out[typ] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interaction stats: %w", err)
	}
	return out, nil
}

func successRate(successful, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}
