package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sandy/internal/domain/user"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrMissingCredentials     = errors.New("email and password are required")
	ErrWeakPassword           = errors.New("password too short")
	ErrPasswordTooLong        = errors.New("password too long")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

const MinPasswordLength = 8

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

// Store is the account backend; PostgresService satisfies it.
type Store interface {
	RegisterUser(ctx context.Context, email, password, firstName, lastName string) (user.AuthResult, error)
	LoginUser(ctx context.Context, email, password string) (user.AuthResult, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.AuthResult{}, ErrMissingCredentials
	}
	if !isValidPassword(in.Password) {
		return user.AuthResult{}, ErrWeakPassword
	}
	if len(in.Password) > user.MaxPasswordBytes {
		return user.AuthResult{}, ErrPasswordTooLong
	}
	if len(strings.TrimSpace(in.FirstName)) > 100 || len(strings.TrimSpace(in.LastName)) > 100 {
		return user.AuthResult{}, ErrInvalidInput
	}

	res, err := s.store.RegisterUser(ctx, email, in.Password, in.FirstName, in.LastName)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return user.AuthResult{}, ErrEmailAlreadyRegistered
		}
		if errors.Is(err, user.ErrPasswordTooLong) {
			return user.AuthResult{}, ErrPasswordTooLong
		}
		return user.AuthResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	res.User = res.User.Sanitized()
	return res, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.AuthResult{}, ErrMissingCredentials
	}

	res, err := s.store.LoginUser(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return user.AuthResult{}, ErrInvalidCredentials
		}
		return user.AuthResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	res.User = res.User.Sanitized()
	return res, nil
}

func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return strings.ToLower(email)
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= MinPasswordLength
}
