package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sandy/internal/database"
	dbpostgres "sandy/internal/database/postgres"
	"sandy/internal/domain/user"
	"sandy/internal/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, COALESCE(first_name, ''), COALESCE(last_name, ''), is_verified, is_staff, created_at, updated_at`

// RegisterUser creates the account, mints an access token and opens a
// session for it in one transaction.
func (s *PostgresService) RegisterUser(ctx context.Context, email, password, firstName, lastName string) (user.AuthResult, error) {
	if err := s.ready(); err != nil {
		return user.AuthResult{}, err
	}
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return user.AuthResult{}, ErrInvalidInput
	}
	if len(password) > user.MaxPasswordBytes {
		return user.AuthResult{}, user.ErrPasswordTooLong
	}

	exists, err := s.emailExists(ctx, s.db, email)
	if err != nil {
		return user.AuthResult{}, err
	}
	if exists {
		return user.AuthResult{}, user.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptRounds)
	if err != nil {
		return user.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	var res user.AuthResult
	err = database.WithTx(ctx, s.db, func(tx database.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, first_name, last_name)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
			RETURNING `+userColumns,
			email, string(hash), strings.TrimSpace(firstName), strings.TrimSpace(lastName),
		))
		if err != nil {
			if dbpostgres.IsUniqueViolation(err) {
				return user.ErrAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		token, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		if err := s.createSession(ctx, tx, u.ID, token); err != nil {
			return err
		}
		res = user.AuthResult{User: u, Token: token}
		return nil
	})
	if err != nil {
		return user.AuthResult{}, err
	}

	s.logger.Info().Str("user_id", res.User.ID.String()).Msg("user registered")
	return res, nil
}

// LoginUser reports user.ErrInvalidCredentials for both an unknown email and
// a wrong password.
func (s *PostgresService) LoginUser(ctx context.Context, email, password string) (user.AuthResult, error) {
	if err := s.ready(); err != nil {
		return user.AuthResult{}, err
	}
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return user.AuthResult{}, user.ErrInvalidCredentials
	}

	var (
		u    user.User
		hash string
	)
	err := s.db.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsVerified, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt, &hash)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return user.AuthResult{}, user.ErrInvalidCredentials
		}
		return user.AuthResult{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return user.AuthResult{}, user.ErrInvalidCredentials
	}

	if _, err := s.CleanupExpiredSessions(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("expired session cleanup failed")
	}

	token, err := s.IssueSession(ctx, u)
	if err != nil {
		return user.AuthResult{}, err
	}
	return user.AuthResult{User: u, Token: token}, nil
}

// IssueSession mints an access token for u and stores its session row.
func (s *PostgresService) IssueSession(ctx context.Context, u user.User) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.createSession(ctx, s.db, u.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyToken resolves a token to its user. The JWT must be a valid access
// token and its session row must exist and be unexpired. The returned time is
// the session expiry.
func (s *PostgresService) VerifyToken(ctx context.Context, token string) (user.User, time.Time, error) {
	if err := s.ready(); err != nil {
		return user.User{}, time.Time{}, err
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return user.User{}, time.Time{}, err
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return user.User{}, time.Time{}, jwt.ErrTokenInvalid
	}

	var (
		sessionID uuid.UUID
		expiresAt time.Time
		u         user.User
	)
	err = s.db.QueryRow(ctx, `
		SELECT s.id, s.expires_at, u.id, u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		       u.is_verified, u.is_staff, u.created_at, u.updated_at
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = $1 AND s.expires_at > NOW()`, token,
	).Scan(&sessionID, &expiresAt, &u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsVerified, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return user.User{}, time.Time{}, user.ErrSessionNotFound
		}
		return user.User{}, time.Time{}, fmt.Errorf("load session: %w", err)
	}

	if _, err := s.db.Exec(ctx, `UPDATE user_sessions SET last_accessed = NOW() WHERE id = $1`, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("touch session failed")
	}
	return u, expiresAt, nil
}

// Logout deletes the session bound to token. It reports whether a row was
// removed.
func (s *PostgresService) Logout(ctx context.Context, token string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	n, err := s.db.Exec(ctx, `DELETE FROM user_sessions WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresService) CreateSession(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.createSession(ctx, s.db, userID, token)
}

func (s *PostgresService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	n, err := s.db.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (s *PostgresService) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	if err := s.ready(); err != nil {
		return user.User{}, err
	}
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *PostgresService) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := s.ready(); err != nil {
		return user.User{}, err
	}
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email)))
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *PostgresService) createSession(ctx context.Context, q database.Querier, userID uuid.UUID, token string) error {
	expiresAt := s.now().UTC().Add(s.opts.SessionTTL)
	if _, err := q.Exec(ctx,
		`INSERT INTO user_sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresService) emailExists(ctx context.Context, q database.Querier, email string) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsVerified, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
