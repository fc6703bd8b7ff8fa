package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
)

// UserStore defines the interface for user account persistence.
type UserStore interface {
	// CreateUser saves a new user.
	// Returns ErrDuplicate if the ID or open ID is already taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetUserByOpenID retrieves a user by login identity.
	// Returns ErrUserNotFound if the user does not exist.
	GetUserByOpenID(ctx context.Context, openID string) (*domain.User, error)

	// DebitPoints subtracts amount from the user's balance as one atomic
	// check-and-debit, returning the updated user.
	// Returns ErrInsufficientFunds, leaving the balance untouched, when the
	// balance is lower than amount.
	DebitPoints(ctx context.Context, id uuid.UUID, amount int) (*domain.User, error)
}
