package ports

import (
	"context"
	"socialconnect-server/internal/model"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmailOrUsername(ctx context.Context, identifier string) (*model.User, error)
	UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error
	UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error
	SetEmailVerified(ctx context.Context, uuid string) error
	SetActive(ctx context.Context, uuid string, active bool) error
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
}

type UserService interface {
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
	ActivateUser(ctx context.Context, uuid string) error
	DeactivateUser(ctx context.Context, uuid string) error
}
