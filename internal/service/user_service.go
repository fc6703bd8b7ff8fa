package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/service/auth"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

// DefaultAvatarURL is assigned to accounts created at first login.
const DefaultAvatarURL = "https://cdn.example.com/avatar/default.jpg"

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
	// Created reports whether the account was created by this login.
	Created bool
}

// UserService provides login and balance operations.
type UserService interface {
	// Login exchanges a client code for a session, creating the account on
	// first use with the configured starting balance.
	Login(ctx context.Context, code string) (*LoginResult, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userServiceImpl struct {
	users         store.UserStore
	jwt           auth.JWTService
	initialPoints int
	logger        *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	jwtService auth.JWTService,
	initialPoints int,
	logger *slog.Logger,
) (UserService, error) {
	switch {
	case users == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "user store cannot be nil"}
	case jwtService == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "jwt service cannot be nil"}
	case logger == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "logger cannot be nil"}
	case initialPoints < 0:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "initial points cannot be negative"}
	}
	return &userServiceImpl{
		users:         users,
		jwt:           jwtService,
		initialPoints: initialPoints,
		logger:        logger.With("component", "user_service"),
	}, nil
}

// Login implements UserService.
func (s *userServiceImpl) Login(ctx context.Context, code string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	openID := domain.OpenIDFromCode(code)

	user, created, err := s.findOrCreate(ctx, openID)
	if err != nil {
		log.ErrorContext(ctx, "login failed", "error", err)
		return nil, NewServiceError("user", "login", "failed to resolve account", err)
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID, user.OpenID)
	if err != nil {
		return nil, NewServiceError("user", "login", "failed to issue token", err)
	}

	log.InfoContext(ctx, "user logged in", "user_id", user.ID, "new_account", created)
	return &LoginResult{Token: token, User: user, Created: created}, nil
}

func (s *userServiceImpl) findOrCreate(ctx context.Context, openID string) (*domain.User, bool, error) {
	user, err := s.users.GetUserByOpenID(ctx, openID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, false, err
	}

	user, err = domain.NewUser(openID, randomNickname(), DefaultAvatarURL, s.initialPoints)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// A concurrent first login with the same code created the account.
		if errors.Is(err, store.ErrDuplicate) {
			existing, getErr := s.users.GetUserByOpenID(ctx, openID)
			return existing, false, getErr
		}
		return nil, false, err
	}
	return user, true, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "get_user", "failed to load user", err)
	}
	return user, nil
}

func randomNickname() string {
	return fmt.Sprintf("User%04d", rand.IntN(10000))
}
