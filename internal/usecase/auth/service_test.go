package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sandy/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	registerErr error
	loginErr    error

	gotEmail string
}

func (f *fakeStore) RegisterUser(_ context.Context, email, _, first, last string) (user.AuthResult, error) {
	f.gotEmail = email
	if f.registerErr != nil {
		return user.AuthResult{}, f.registerErr
	}
	return user.AuthResult{User: user.User{ID: uuid.New(), Email: email, FirstName: first, LastName: last, PasswordHash: "h"}, Token: "tok"}, nil
}

func (f *fakeStore) LoginUser(_ context.Context, email, _ string) (user.AuthResult, error) {
	f.gotEmail = email
	if f.loginErr != nil {
		return user.AuthResult{}, f.loginErr
	}
	return user.AuthResult{User: user.User{ID: uuid.New(), Email: email, PasswordHash: "h"}, Token: "tok"}, nil
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(&fakeStore{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "", Password: "password123"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: strings.Repeat("a", 73)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: strings.Repeat("a", 72)})
	assert.NoError(t, err)
}

func TestRegister_NormalizesAndSanitizes(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	res, err := svc.Register(context.Background(), RegisterInput{Email: " Ann@Example.COM ", Password: "password123", FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", store.gotEmail)
	assert.Empty(t, res.User.PasswordHash)
	assert.Equal(t, "Ann", res.User.FirstName)
}

func TestRegister_MapsStoreErrors(t *testing.T) {
	svc := NewService(&fakeStore{registerErr: user.ErrAlreadyExists})
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	svc = NewService(&fakeStore{registerErr: errors.New("db down")})
	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "password123"})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestLogin(t *testing.T) {
	svc := NewService(&fakeStore{loginErr: user.ErrInvalidCredentials})
	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	svc = NewService(&fakeStore{})
	res, err := svc.Login(context.Background(), LoginInput{Email: "A@B.C", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)
}
