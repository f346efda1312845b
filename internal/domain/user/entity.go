package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsVerified   bool      `json:"is_verified"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized drops the password hash before the user leaves the store.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Token        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	LastAccessed time.Time
}

// AuthResult is what register and login hand back: the user and the access
// token bound to the freshly created session.
type AuthResult struct {
	User  User
	Token string
}
