package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sandy/internal/domain/recommendation"

	"github.com/google/uuid"
)

func (s *PostgresService) SaveRecommendation(ctx context.Context, userID uuid.UUID, recType string, data map[string]any) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	if data == nil {
		return uuid.Nil, ErrInvalidInput
	}
	raw, err := encodeJSON(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode recommendation: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx, `
		INSERT INTO recommendations (user_id, recommendation_type, recommendation_data)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id`,
		userID, strings.TrimSpace(recType), raw,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert recommendation: %w", err)
	}
	return id, nil
}

// UpdateRecommendationFeedback only touches rows owned by userID; anything
// else is reported as recommendation.ErrNotFound.
func (s *PostgresService) UpdateRecommendationFeedback(ctx context.Context, userID, recID uuid.UUID, wasHelpful bool, feedback *string) error {
	if err := s.ready(); err != nil {
		return err
	}
	n, err := s.db.Exec(ctx,
		`UPDATE recommendations SET was_helpful = $1, feedback = $2 WHERE id = $3 AND user_id = $4`,
		wasHelpful, feedback, recID, userID,
	)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	if n == 0 {
		return recommendation.ErrNotFound
	}
	return nil
}

func (s *PostgresService) GetRecommendationHistory(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.HistoryEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, recommendation_type, recommendation_data, was_helpful, feedback, timestamp
		FROM recommendations
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	defer rows.Close()

	out := make([]recommendation.HistoryEntry, 0)
	for rows.Next() {
		var (
			e   recommendation.HistoryEntry
			raw []byte
			ts  time.Time
		)
		if err := rows.Scan(&e.ID, &e.Type, &raw, &e.WasHelpful, &e.Feedback, &ts); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		data, err := decodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("decode recommendation: %w", err)
		}
		e.Data = data
		e.Timestamp = ts
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	return out, nil
}
