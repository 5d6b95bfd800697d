package repository

import (
	"context"

	"github.com/nkiryanov/discoteca/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         int
}

// Disco repository interface
// Every method that addresses a single disco must return apperrors.ErrDiscoNotFound if it not exists
type DiscoRepo interface {
	ListDiscos(ctx context.Context) ([]models.Disco, error)
	GetDisco(ctx context.Context, id int64) (models.Disco, error)
	CreateDisco(ctx context.Context, d models.Disco) (models.Disco, error)
	ReplaceDisco(ctx context.Context, d models.Disco) (models.Disco, error)
	PatchDisco(ctx context.Context, id int64, patch models.DiscoPatch) (models.Disco, error)
	DeleteDisco(ctx context.Context, id int64) error
}

type Storage interface {
	User() UserRepo
	Disco() DiscoRepo

	// Ping storage to check it is alive
	Ping(ctx context.Context) error
}
