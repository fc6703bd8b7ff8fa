package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/events"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

// DispatchFailedMessage is recorded on tasks that could not be handed to a worker.
const DispatchFailedMessage = "generation could not be scheduled, please try again later"

// SubmitRequest is an accepted generation request.
type SubmitRequest struct {
	UserID   uuid.UUID
	PhotoURL string
	Prompt   string
}

// PhotoService accepts generation requests and answers status polls.
type PhotoService interface {
	// Submit debits the user, stores a pending task and schedules it. The
	// returned task reflects the state at acceptance; it is failed when
	// scheduling was rejected.
	Submit(ctx context.Context, req SubmitRequest) (*domain.GenerationTask, error)

	// GetStatus returns the client view of a task.
	GetStatus(ctx context.Context, taskID uuid.UUID) (*StatusView, error)

	// GetResult returns the result of a completed task or ErrTaskNotCompleted.
	GetResult(ctx context.Context, taskID uuid.UUID) (*ResultView, error)
}

// PhotoServiceConfig holds the economy and estimate settings for submissions.
type PhotoServiceConfig struct {
	GenerationCost   int
	EstimatedSeconds int
}

type photoServiceImpl struct {
	tasks   store.TaskStore
	users   store.UserStore
	emitter events.EventEmitter
	config  PhotoServiceConfig
	logger  *slog.Logger
}

var _ PhotoService = (*photoServiceImpl)(nil)

// NewPhotoService creates a new PhotoService.
// It returns an error if any of the required dependencies are nil.
func NewPhotoService(
	tasks store.TaskStore,
	users store.UserStore,
	emitter events.EventEmitter,
	config PhotoServiceConfig,
	logger *slog.Logger,
) (PhotoService, error) {
	switch {
	case tasks == nil:
		return nil, &ServiceError{Service: "photo", Operation: "create_service", Message: "task store cannot be nil"}
	case users == nil:
		return nil, &ServiceError{Service: "photo", Operation: "create_service", Message: "user store cannot be nil"}
	case emitter == nil:
		return nil, &ServiceError{Service: "photo", Operation: "create_service", Message: "event emitter cannot be nil"}
	case logger == nil:
		return nil, &ServiceError{Service: "photo", Operation: "create_service", Message: "logger cannot be nil"}
	case config.GenerationCost < 1:
		return nil, &ServiceError{Service: "photo", Operation: "create_service", Message: "generation cost must be positive"}
	}

	return &photoServiceImpl{
		tasks:   tasks,
		users:   users,
		emitter: emitter,
		config:  config,
		logger:  logger.With("component", "photo_service"),
	}, nil
}

// Submit implements PhotoService.
func (s *photoServiceImpl) Submit(ctx context.Context, req SubmitRequest) (*domain.GenerationTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.UserID == uuid.Nil || req.PhotoURL == "" || req.Prompt == "" {
		return nil, fmt.Errorf("%w: photoUrl and prompt are required", ErrInvalidInput)
	}

	task, err := domain.NewGenerationTask(req.UserID, req.PhotoURL, req.Prompt, s.config.EstimatedSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.users.DebitPoints(ctx, req.UserID, s.config.GenerationCost)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			log.InfoContext(ctx, "generation rejected: insufficient points", "user_id", req.UserID)
		} else {
			log.ErrorContext(ctx, "failed to debit points", "error", err, "user_id", req.UserID)
		}
		return nil, NewServiceError("photo", "submit", "failed to debit points", err)
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		log.ErrorContext(ctx, "failed to store generation task after debit",
			"error", err,
			"user_id", req.UserID,
			"task_id", task.ID)
		return nil, NewServiceError("photo", "submit", "failed to store task", err)
	}

	log.InfoContext(ctx, "generation task accepted",
		"task_id", task.ID,
		"user_id", req.UserID,
		"points_left", user.Points)

	event, err := events.NewPhotoGenerationEvent(task.ID, task.UserID)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to dispatch generation task", "error", err, "task_id", task.ID)
		return s.markDispatchFailed(ctx, task), nil
	}

	return task, nil
}

// markDispatchFailed records the dispatch failure and returns the task as
// the client should see it. The debited point is not refunded.
func (s *photoServiceImpl) markDispatchFailed(ctx context.Context, task *domain.GenerationTask) *domain.GenerationTask {
	failed, err := s.tasks.UpdateTask(context.WithoutCancel(ctx), task.ID, domain.FailureUpdate(DispatchFailedMessage))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to record dispatch failure",
			"error", err,
			"task_id", task.ID)
		failed = task.Clone()
		failed.Status = domain.TaskStatusFailed
		failed.ErrorMessage = DispatchFailedMessage
	}
	return failed
}

// GetStatus implements PhotoService.
func (s *photoServiceImpl) GetStatus(ctx context.Context, taskID uuid.UUID) (*StatusView, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("photo", "get_status", "failed to load task", err)
	}
	view := ProjectStatus(task)
	return &view, nil
}

// GetResult implements PhotoService.
func (s *photoServiceImpl) GetResult(ctx context.Context, taskID uuid.UUID) (*ResultView, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("photo", "get_result", "failed to load task", err)
	}
	return ProjectResult(task)
}
