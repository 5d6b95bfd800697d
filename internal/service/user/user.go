package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/models"
	"github.com/nkiryanov/discoteca/internal/repository"
	"github.com/nkiryanov/discoteca/internal/service/auth"
)

// Hash compared when user not found, so unknown email takes as long as wrong password
var dummyHash = sync.OnceValue(func() string {
	hash, _ := auth.DefaultHasher.Hash("discoteca-dummy-password")
	return hash
})

type UserService struct {
	hasher   auth.PasswordHasher
	userRepo repository.UserRepo
}

func NewService(hasher auth.PasswordHasher, userRepo repository.UserRepo) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
	}
}

// Emails are stored and looked up trimmed and lowercased
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create user with default role
// Returns apperrors.ErrUserAlreadyExists if email is taken
func (s *UserService) CreateUser(ctx context.Context, name string, email string, password string) (models.User, error) {
	var user models.User
	if password == "" {
		return user, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         models.RoleDefault,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Authenticate user by email and password
// Unknown email and wrong password are the same apperrors.ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.hasher.Verify(password, dummyHash())
		return models.User{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, id)
}
