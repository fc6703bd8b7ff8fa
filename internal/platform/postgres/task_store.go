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

const taskColumns = `id, user_id, photo_url, prompt, status, progress, result_url, thumbnail_url,
	error_message, enhanced_prompt, estimated_seconds, created_at, updated_at, completed_at`

// PostgresTaskStore implements store.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db *sql.DB) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.GenerationTask, error) {
	var (
		task        domain.GenerationTask
		status      string
		completedAt sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.PhotoURL,
		&task.Prompt,
		&status,
		&task.Progress,
		&task.ResultURL,
		&task.ThumbnailURL,
		&task.ErrorMessage,
		&task.EnhancedPrompt,
		&task.EstimatedSeconds,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	return &task, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateTask implements store.TaskStore.
func (s *PostgresTaskStore) CreateTask(ctx context.Context, task *domain.GenerationTask) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO generation_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.PhotoURL,
		task.Prompt,
		string(task.Status),
		task.Progress,
		task.ResultURL,
		task.ThumbnailURL,
		task.ErrorMessage,
		task.EnhancedPrompt,
		task.EstimatedSeconds,
		task.CreatedAt,
		task.UpdatedAt,
		nullTime(task.CompletedAt),
	)
	if err != nil {
		log.Error("failed to insert task", "task_id", task.ID, "error", err)
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}
	return nil
}

// GetTask implements store.TaskStore.
func (s *PostgresTaskStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.GenerationTask, error) {
	return s.getTask(ctx, s.db, id, false)
}

func (s *PostgresTaskStore) getTask(
	ctx context.Context,
	db store.DBTX,
	id uuid.UUID,
	forUpdate bool,
) (*domain.GenerationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM generation_tasks WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	task, err := scanTask(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}
	return task, nil
}

// UpdateTask implements store.TaskStore. The row is locked for the duration of
// the merge so concurrent updates to one task apply one after another.
func (s *PostgresTaskStore) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	update domain.TaskUpdate,
) (*domain.GenerationTask, error) {
	var merged *domain.GenerationTask

	err := store.RunInTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		task, err := s.getTask(ctx, tx, id, true)
		if err != nil {
			return err
		}

		if err := task.Apply(update, s.now()); err != nil {
			return store.NewStoreError("task", "update", "update rejected", err)
		}

		query := `UPDATE generation_tasks
			SET status = $2, progress = $3, result_url = $4, thumbnail_url = $5,
				error_message = $6, enhanced_prompt = $7, updated_at = $8, completed_at = $9
			WHERE id = $1`
		result, err := tx.ExecContext(ctx, query,
			task.ID,
			string(task.Status),
			task.Progress,
			task.ResultURL,
			task.ThumbnailURL,
			task.ErrorMessage,
			task.EnhancedPrompt,
			task.UpdatedAt,
			nullTime(task.CompletedAt),
		)
		if err != nil {
			return store.NewStoreError("task", "update", "failed to write task", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}

		merged = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// ListUnfinishedTasks implements store.TaskStore.
func (s *PostgresTaskStore) ListUnfinishedTasks(ctx context.Context) ([]*domain.GenerationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM generation_tasks
		WHERE status IN ('pending', 'processing')
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("task", "list", "failed to query unfinished tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.GenerationTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "failed to iterate tasks", err)
	}
	return tasks, nil
}
