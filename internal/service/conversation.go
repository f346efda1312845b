package service

import (
	"context"
	"fmt"
	"time"

	"sandy/internal/domain/conversation"

	"github.com/google/uuid"
)

func (s *PostgresService) SaveConversation(ctx context.Context, userID uuid.UUID, messageType, text string, contextData map[string]any) (uuid.UUID, error) {
	if err := s.ready(); err != nil {
		return uuid.Nil, err
	}
	if !conversation.ValidMessageType(messageType) {
		return uuid.Nil, conversation.ErrInvalidMessageType
	}
	raw, err := encodeJSON(contextData)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode context: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx, `
		INSERT INTO conversations (user_id, message_type, message_text, context_data)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		userID, messageType, text, raw,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert conversation: %w", err)
	}
	return id, nil
}

// GetConversationHistory returns the newest limit messages in chronological
// order.
func (s *PostgresService) GetConversationHistory(ctx context.Context, userID uuid.UUID, limit int) ([]conversation.HistoryEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, message_type, message_text, context_data, timestamp
		FROM conversations
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var newestFirst []conversation.HistoryEntry
	for rows.Next() {
		var (
			e   conversation.HistoryEntry
			raw []byte
			ts  time.Time
		)
		if err := rows.Scan(&e.ID, &e.Role, &e.Content, &raw, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		ctxData, err := decodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
		if ctxData == nil {
			ctxData = map[string]any{}
		}
		e.UserID = userID
		e.Type = e.Role
		e.Context = ctxData
		e.Timestamp = ts
		newestFirst = append(newestFirst, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	out := make([]conversation.HistoryEntry, len(newestFirst))
	for i, e := range newestFirst {
		out[len(newestFirst)-1-i] = e
	}
	return out, nil
}

func (s *PostgresService) ClearConversationHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	n, err := s.db.Exec(ctx, `DELETE FROM conversations WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}
