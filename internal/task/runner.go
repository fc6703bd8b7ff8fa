package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

// InterruptedMessage is recorded on tasks that a previous process left unfinished.
const InterruptedMessage = "interrupted by service restart"

// ErrDispatchFailed is returned when a task cannot be handed to a worker.
var ErrDispatchFailed = errors.New("failed to dispatch task")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue.
	// Submissions beyond it are rejected.
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 4,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store  store.TaskStore
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(taskStore store.TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	r := &TaskRunner{
		store:  taskStore,
		queue:  queue,
		pool:   pool,
		logger: logger,
	}
	pool.SetErrorHandler(r.handleTaskError)
	return r
}

// SetErrorHandler replaces the default handler invoked when a task returns an error.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit hands a task to the worker pool without waiting for it to run.
// A full or closed queue yields an error wrapping ErrDispatchFailed.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		r.logger.WarnContext(ctx, "task rejected by queue",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return nil
}

// Start closes out work left by a previous process and launches the workers.
func (r *TaskRunner) Start(ctx context.Context) error {
	if _, err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}
	r.pool.Start()
	return nil
}

// Stop rejects further submissions and waits for queued and running tasks to finish.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.queue.Close()
	return r.pool.Stop(ctx)
}

// Recover marks every pending or processing task as failed. In-flight work
// lives only in process memory, so such tasks can never finish on their own.
// It returns the number of tasks it closed.
func (r *TaskRunner) Recover(ctx context.Context) (int, error) {
	unfinished, err := r.store.ListUnfinishedTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unfinished tasks: %w", err)
	}

	if len(unfinished) == 0 {
		return 0, nil
	}

	r.logger.InfoContext(ctx, "closing tasks interrupted by restart", "count", len(unfinished))

	closed := 0
	for _, t := range unfinished {
		_, err := r.store.UpdateTask(ctx, t.ID, domain.FailureUpdate(InterruptedMessage))
		if err != nil {
			if errors.Is(err, domain.ErrTaskTerminal) {
				continue
			}
			r.logger.ErrorContext(ctx, "failed to close interrupted task",
				"task_id", t.ID,
				"status", t.Status,
				"error", err)
			continue
		}
		closed++
	}

	return closed, nil
}

// handleTaskError is the default error handler: tasks record their own
// outcome in the store, so the runner only logs.
func (r *TaskRunner) handleTaskError(task Task, err error) {
	r.logger.Error("task returned an error",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"error", err)
}
