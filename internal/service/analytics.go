package service

import (
	"context"
	"fmt"

	"sandy/internal/domain/interaction"

	"github.com/google/uuid"
)

func (s *PostgresService) GetUserAnalytics(ctx context.Context, userID uuid.UUID) (interaction.UserAnalytics, error) {
	if err := s.ready(); err != nil {
		return interaction.UserAnalytics{}, err
	}
	var a interaction.UserAnalytics
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM conversations WHERE user_id = $1),
			(SELECT COUNT(*) FROM user_interactions WHERE user_id = $1),
			(SELECT COUNT(*) FROM recommendations WHERE user_id = $1)`, userID,
	).Scan(&a.TotalConversations, &a.TotalInteractions, &a.TotalRecommendations)
	if err != nil {
		return interaction.UserAnalytics{}, fmt.Errorf("user analytics: %w", err)
	}
	return a, nil
}

func (s *PostgresService) GetSystemAnalytics(ctx context.Context) (interaction.SystemAnalytics, error) {
	if err := s.ready(); err != nil {
		return interaction.SystemAnalytics{}, err
	}
	var a interaction.SystemAnalytics
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM conversations WHERE timestamp > NOW() - make_interval(days => $1)),
			(SELECT COUNT(*) FROM user_interactions WHERE timestamp > NOW() - make_interval(days => $1))`,
		systemAnalyticsDays,
	).Scan(&a.TotalUsers, &a.ConversationsLast30Days, &a.InteractionsLast30Days)
	if err != nil {
		return interaction.SystemAnalytics{}, fmt.Errorf("system analytics: %w", err)
	}
	return a, nil
}
