package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// PhotoGenerationTaskFactory creates PhotoGenerationTask instances
type PhotoGenerationTaskFactory struct {
	deps   Dependencies
	logger *slog.Logger
}

// NewPhotoGenerationTaskFactory creates a new factory for PhotoGenerationTasks
func NewPhotoGenerationTaskFactory(deps Dependencies, logger *slog.Logger) (*PhotoGenerationTaskFactory, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &PhotoGenerationTaskFactory{
		deps:   deps,
		logger: logger.With("component", "photo_generation_task_factory"),
	}, nil
}

// CreateTask creates a driver for the stored task with the given ID
func (f *PhotoGenerationTaskFactory) CreateTask(taskID uuid.UUID) (Task, error) {
	return NewPhotoGenerationTask(taskID, f.deps, f.logger)
}
