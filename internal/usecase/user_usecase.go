package usecase

import (
	"context"

	"sandy/internal/domain/user"
	ucuser "sandy/internal/usecase/user"

	"github.com/google/uuid"
)

type UserUsecase interface {
	Me(ctx context.Context, userID uuid.UUID) (user.User, error)
}

type User struct {
	svc *ucuser.Service
}

func NewUserUsecase(users ucuser.Store) *User {
	return &User{svc: ucuser.NewService(users)}
}

func (u *User) Me(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return u.svc.GetMe(ctx, userID)
}
