package service

import (
	"context"
	"fmt"

	dbpostgres "sandy/internal/database/postgres"
	"sandy/internal/domain/profile"

	"github.com/google/uuid"
)

const documentUserKey = "userId"

func (s *PostgresService) GetUserProfile(ctx context.Context, userID uuid.UUID) (profile.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT profile_data FROM user_profiles WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return nil, profile.ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return documentWithUser(raw, userID)
}

// SaveUserProfile upserts the document. The userId key is derived from the
// row and never stored.
func (s *PostgresService) SaveUserProfile(ctx context.Context, userID uuid.UUID, doc profile.Document) error {
	if err := s.ready(); err != nil {
		return err
	}
	clean := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == documentUserKey {
			continue
		}
		clean[k] = v
	}
	raw, err := encodeJSON(clean)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_profiles (user_id, profile_data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET profile_data = EXCLUDED.profile_data, updated_at = NOW()`,
		userID, raw,
	)
	if err != nil {
		if dbpostgres.IsForeignKeyViolation(err) {
			return ErrInvalidInput
		}
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresService) GetAllUserProfiles(ctx context.Context) ([]profile.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `SELECT user_id, profile_data FROM user_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]profile.Document, 0)
	for rows.Next() {
		var (
			userID uuid.UUID
			raw    []byte
		)
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		doc, err := documentWithUser(raw, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresService) DeleteUserProfile(ctx context.Context, userID uuid.UUID) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	n, err := s.db.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	return n > 0, nil
}

func documentWithUser(raw []byte, userID uuid.UUID) (profile.Document, error) {
	m, err := decodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	doc := make(profile.Document, len(m)+1)
	for k, v := range m {
		doc[k] = v
	}
	doc[documentUserKey] = userID.String()
	return doc, nil
}
