package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/models"
	"github.com/nkiryanov/discoteca/internal/service/auth/tokenmanager"
)

const (
	defaultAccessHeaderName  = "Authorization"
	defaultAccessAuthScheme  = "Bearer"
	defaultRefreshCookieName = "refresh_token"
	defaultRefreshCookiePath = "/"
)

type Config struct {
	// Refresh cookie name and path. Path should be the prefix auth routes are mounted on
	RefreshCookieName string
	RefreshCookiePath string

	// Send refresh cookie over TLS only. Must be true in production
	RefreshCookieSecure bool

	// Issue new refresh token on every refresh, not only access one
	RotateRefresh bool
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	CreateUser(ctx context.Context, name string, email string, password string) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials if email or password wrong
	Authenticate(ctx context.Context, email string, password string) (models.User, error)

	// Has to return apperrors.ErrUserNotFound if user not exists
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

type AuthService struct {
	accessHeaderName  string
	accessAuthScheme  string
	refreshCookieName string
	refreshCookiePath string
	refreshSecure     bool
	rotateRefresh     bool

	tokenManager *tokenmanager.TokenManager
	users        userService
}

func NewService(cfg Config, tokenManager *tokenmanager.TokenManager, users userService) (*AuthService, error) {
	if tokenManager == nil || users == nil {
		return nil, errors.New("token manager and user service must not be nil")
	}

	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookieName
	}
	if cfg.RefreshCookiePath == "" {
		cfg.RefreshCookiePath = defaultRefreshCookiePath
	}

	return &AuthService{
		accessHeaderName:  defaultAccessHeaderName,
		accessAuthScheme:  defaultAccessAuthScheme,
		refreshCookieName: cfg.RefreshCookieName,
		refreshCookiePath: cfg.RefreshCookiePath,
		refreshSecure:     cfg.RefreshCookieSecure,
		rotateRefresh:     cfg.RotateRefresh,
		tokenManager:      tokenManager,
		users:             users,
	}, nil
}

// Access token lifetime, reported to clients as expires_in
func (s *AuthService) AccessTTL() time.Duration {
	return s.tokenManager.AccessTTL()
}

// Register new user and issue token pair for it
func (s *AuthService) Register(ctx context.Context, name string, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.users.CreateUser(ctx, name, email, password)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

// Login user with email and password
// Returns apperrors.ErrInvalidCredentials whatever was wrong
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, pair, nil
}

// Issue new access token for valid refresh token
// Pair Refresh is empty unless rotation enabled
//
// Errors:
//   - apperrors.ErrToken* if refresh token rejected
//   - apperrors.ErrUserNotFound if user removed after token issued
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	userID, err := s.tokenManager.ParseRefresh(refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	if s.rotateRefresh {
		return s.tokenManager.GeneratePair(user)
	}

	access, err := s.tokenManager.IssueAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access}, nil
}

// Authenticate request by access token from header
// Nothing but the token is checked, storage not touched
func (s *AuthService) Authenticate(r *http.Request) (models.Principal, error) {
	header := r.Header.Get(s.accessHeaderName)
	if header == "" {
		return models.Principal{}, apperrors.ErrTokenMissing
	}

	access, ok := strings.CutPrefix(header, s.accessAuthScheme+" ")
	if !ok {
		return models.Principal{}, apperrors.ErrTokenMissing
	}

	return s.tokenManager.ParseAccess(access)
}

// Set refresh token cookie, it lives as long as the token itself
func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    refresh.Value,
		Path:     s.refreshCookiePath,
		MaxAge:   int(s.tokenManager.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.refreshSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Ask client to drop refresh cookie
func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     s.refreshCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.refreshSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read refresh token from cookie
// Returns apperrors.ErrTokenMissing if cookie not sent or empty
func (s *AuthService) ReadRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrTokenMissing
	}

	return cookie.Value, nil
}
