package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

const userColumns = `id, open_id, nickname, avatar_url, points, created_at, updated_at`

// PostgresUserStore implements store.UserStore using PostgreSQL.
type PostgresUserStore struct {
	db  store.DBTX
	now func() time.Time
}

// NewPostgresUserStore creates a new PostgresUserStore.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.OpenID,
		&user.Nickname,
		&user.AvatarURL,
		&user.Points,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser implements store.UserStore.
func (s *PostgresUserStore) CreateUser(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.OpenID,
		user.Nickname,
		user.AvatarURL,
		user.Points,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert user", "user_id", user.ID, "error", err)
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}
	return nil
}

// GetUser implements store.UserStore.
func (s *PostgresUserStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.queryUser(ctx, "get", query, id)
}

// GetUserByOpenID implements store.UserStore.
func (s *PostgresUserStore) GetUserByOpenID(ctx context.Context, openID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE open_id = $1`
	return s.queryUser(ctx, "get_by_open_id", query, openID)
}

func (s *PostgresUserStore) queryUser(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", op, "failed to query user", MapError(err))
	}
	return user, nil
}

// DebitPoints implements store.UserStore. The balance guard lives in the
// UPDATE's WHERE clause, so the check and the debit are one statement.
func (s *PostgresUserStore) DebitPoints(ctx context.Context, id uuid.UUID, amount int) (*domain.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive", store.ErrInvalidEntity)
	}

	query := `UPDATE users SET points = points - $2, updated_at = $3
		WHERE id = $1 AND points >= $2
		RETURNING ` + userColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id, amount, s.now()))
	if err == nil {
		logger.FromContext(ctx).Debug("points debited",
			"user_id", id,
			"amount", amount,
			"balance", user.Points)
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, store.NewStoreError("user", "debit", "failed to debit points", MapError(err))
	}

	// No row matched: either the user is missing or the balance is too low.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).
		Scan(&exists); err != nil {
		return nil, store.NewStoreError("user", "debit", "failed to check user", MapError(err))
	}
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return nil, store.ErrInsufficientFunds
}
