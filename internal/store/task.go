package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
)

// TaskStore defines the interface for generation task persistence.
// Implementations return copies; callers never hold a live reference to a stored record.
type TaskStore interface {
	// CreateTask saves a new task.
	// Returns ErrDuplicate if a task with the same ID already exists.
	CreateTask(ctx context.Context, task *domain.GenerationTask) error

	// GetTask retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.GenerationTask, error)

	// UpdateTask atomically merges the update into the stored task and returns
	// the merged record. Concurrent updates to the same task are serialized.
	// Returns ErrTaskNotFound if the task does not exist, or the domain
	// transition error if the update violates the task lifecycle.
	UpdateTask(ctx context.Context, id uuid.UUID, update domain.TaskUpdate) (*domain.GenerationTask, error)

	// ListUnfinishedTasks returns every task still pending or processing.
	ListUnfinishedTasks(ctx context.Context) ([]*domain.GenerationTask, error)
}
