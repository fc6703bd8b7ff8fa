package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"github.com/phrazzld/magicphoto-api/internal/store"
)

// Common errors
var (
	ErrNilTaskStore  = errors.New("task store cannot be nil")
	ErrNilProvider   = errors.New("image provider cannot be nil")
	ErrNilImageStore = errors.New("image store cannot be nil")
	ErrNilPublisher  = errors.New("gallery publisher cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrEmptyTaskID   = errors.New("task ID cannot be empty")
)

// ImageStore persists inline provider output and returns a public URL for it.
type ImageStore interface {
	SaveGenerated(ctx context.Context, taskID uuid.UUID, data []byte, mimeType string) (string, error)
}

// GalleryPublisher adds a completed task to the public feed.
type GalleryPublisher interface {
	Publish(ctx context.Context, task *domain.GenerationTask) (*domain.GalleryItem, error)
}

// ImageOptions are the fixed provider parameters applied to every request.
type ImageOptions struct {
	AspectRatio    string
	NegativePrompt string
	SampleCount    int
}

// Dependencies groups the collaborators a PhotoGenerationTask needs.
// Enhancer may be nil, in which case the first fallback tier is skipped.
type Dependencies struct {
	Store     store.TaskStore
	Provider  generation.ImageProvider
	Enhancer  generation.PromptEnhancer
	Images    ImageStore
	Publisher GalleryPublisher
	Options   ImageOptions
}

func (d Dependencies) validate() error {
	if d.Store == nil {
		return ErrNilTaskStore
	}
	if d.Provider == nil {
		return ErrNilProvider
	}
	if d.Images == nil {
		return ErrNilImageStore
	}
	if d.Publisher == nil {
		return ErrNilPublisher
	}
	return nil
}

// PhotoGenerationTask drives one stored GenerationTask through the pipeline.
// It is the only writer of its record while it runs.
type PhotoGenerationTask struct {
	taskID   uuid.UUID
	deps     Dependencies
	logger   *slog.Logger
	progress int
}

// NewPhotoGenerationTask creates a driver for the task record with the given ID.
func NewPhotoGenerationTask(
	taskID uuid.UUID,
	deps Dependencies,
	logger *slog.Logger,
) (*PhotoGenerationTask, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	return &PhotoGenerationTask{
		taskID: taskID,
		deps:   deps,
		logger: logger.With("task_type", TaskTypePhotoGeneration, "task_id", taskID),
	}, nil
}

// ID returns the generation task's identifier
func (t *PhotoGenerationTask) ID() uuid.UUID {
	return t.taskID
}

// Type returns the task type identifier
func (t *PhotoGenerationTask) Type() string {
	return TaskTypePhotoGeneration
}

// Execute runs the pipeline. Once the record reaches processing it always
// ends completed: provider failures go through the fallback chain. An error
// is returned only when the record could not be loaded or started.
func (t *PhotoGenerationTask) Execute(ctx context.Context) error {
	record, err := t.deps.Store.GetTask(ctx, t.taskID)
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to load task", "error", err)
		return fmt.Errorf("failed to load task: %w", err)
	}
	if record.IsTerminal() {
		t.logger.WarnContext(ctx, "task already finished, skipping", "status", record.Status)
		return nil
	}
	t.logger = t.logger.With("user_id", record.UserID)

	started, err := t.deps.Store.UpdateTask(ctx, t.taskID, domain.ProcessingUpdate())
	if err != nil {
		if errors.Is(err, domain.ErrTaskTerminal) {
			t.logger.WarnContext(ctx, "task finished before it could start")
			return nil
		}
		t.logger.ErrorContext(ctx, "failed to mark task processing", "error", err)
		t.fail(ctx, "failed to start generation")
		return fmt.Errorf("failed to start task: %w", err)
	}
	t.progress = started.Progress
	t.logger.InfoContext(ctx, "starting photo generation")

	result, err := t.generate(ctx, started)
	if err != nil {
		t.logger.WarnContext(ctx, "image provider failed, entering fallback", "error", err)
		t.runFallback(ctx, started)
		return nil
	}

	if !t.complete(ctx, result, result, "") {
		t.runFallback(ctx, started)
	}
	return nil
}

// generate calls the provider and turns its output into a public URL.
func (t *PhotoGenerationTask) generate(ctx context.Context, record *domain.GenerationTask) (string, error) {
	req := generation.ImageRequest{
		Prompt:         generation.BuildImagePrompt(record.PhotoURL, record.Prompt),
		NegativePrompt: t.deps.Options.NegativePrompt,
		AspectRatio:    t.deps.Options.AspectRatio,
		SampleCount:    t.deps.Options.SampleCount,
	}
	t.checkpoint(ctx, domain.ProgressPrepared)

	t.checkpoint(ctx, domain.ProgressSent)
	image, err := t.deps.Provider.GenerateImage(ctx, req)
	if err != nil {
		return "", err
	}

	t.checkpoint(ctx, domain.ProgressResponseParsed)
	if len(image.Data) > 0 {
		url, err := t.deps.Images.SaveGenerated(ctx, t.taskID, image.Data, image.MIMEType)
		if err != nil {
			return "", fmt.Errorf("%w: failed to store generated image: %v", generation.ErrInvalidResponse, err)
		}
		return url, nil
	}
	if image.URL != "" {
		return image.URL, nil
	}
	return "", fmt.Errorf("%w: provider returned neither data nor URL", generation.ErrInvalidResponse)
}

// checkpoint raises progress to p. Checkpoints at or below the current
// progress are skipped, and write failures are logged without aborting.
func (t *PhotoGenerationTask) checkpoint(ctx context.Context, p int) {
	if p <= t.progress {
		return
	}
	updated, err := t.deps.Store.UpdateTask(ctx, t.taskID, domain.ProgressUpdate(p))
	if err != nil {
		t.logger.WarnContext(ctx, "failed to record progress", "progress", p, "error", err)
		return
	}
	t.progress = updated.Progress
}

// Gallery publication is retried since the completed record cannot be
// rolled back. A duplicate means an earlier attempt already landed.
const (
	publishAttempts = 3
	publishBackoff  = 20 * time.Millisecond
)

// complete records the terminal completed transition and publishes the
// result to the gallery. It reports whether the record is now terminal, in
// which case no further tier may run. The write survives cancellation of ctx
// so shutdown cannot strand a task.
func (t *PhotoGenerationTask) complete(ctx context.Context, resultURL, thumbnailURL, enhancedPrompt string) bool {
	ctx = context.WithoutCancel(ctx)

	completed, err := t.deps.Store.UpdateTask(ctx, t.taskID,
		domain.CompletionUpdate(resultURL, thumbnailURL, enhancedPrompt))
	if err != nil {
		return t.settleFailedCompletion(ctx, err)
	}
	t.progress = completed.Progress

	t.publish(ctx, completed)
	t.logger.InfoContext(ctx, "photo generation completed", "enhanced", enhancedPrompt != "")
	return true
}

// settleFailedCompletion re-reads the record after a failed completion write,
// since the write may have committed anyway. It returns false only when the
// record is still in flight and the next tier may run.
func (t *PhotoGenerationTask) settleFailedCompletion(ctx context.Context, writeErr error) bool {
	current, err := t.deps.Store.GetTask(ctx, t.taskID)
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to record completion and to re-read task",
			"error", writeErr,
			"read_error", err)
		return errors.Is(writeErr, domain.ErrTaskTerminal)
	}

	switch current.Status {
	case domain.TaskStatusCompleted:
		t.logger.WarnContext(ctx, "completion write reported an error but the task is completed",
			"error", writeErr,
			"result_url", current.ResultURL)
		t.progress = current.Progress
		t.publish(ctx, current)
		return true
	case domain.TaskStatusFailed:
		t.logger.WarnContext(ctx, "task failed before completion could be recorded",
			"error", writeErr,
			"message", current.ErrorMessage)
		return true
	default:
		t.logger.ErrorContext(ctx, "failed to record completion, falling back to next tier",
			"error", writeErr,
			"status", current.Status)
		return false
	}
}

// publish adds a completed record to the gallery, retrying transient errors.
func (t *PhotoGenerationTask) publish(ctx context.Context, completed *domain.GenerationTask) {
	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		_, err = t.deps.Publisher.Publish(ctx, completed)
		if err == nil {
			return
		}
		if errors.Is(err, store.ErrDuplicate) {
			t.logger.DebugContext(ctx, "task already in gallery")
			return
		}
		t.logger.WarnContext(ctx, "failed to publish to gallery", "error", err, "attempt", attempt)
		if attempt < publishAttempts {
			time.Sleep(time.Duration(attempt) * publishBackoff)
		}
	}
	t.logger.ErrorContext(ctx, "giving up on gallery publication", "error", err, "attempts", publishAttempts)
}

// fail records a terminal failure, logging if even that cannot be written.
func (t *PhotoGenerationTask) fail(ctx context.Context, message string) {
	ctx = context.WithoutCancel(ctx)
	if _, err := t.deps.Store.UpdateTask(ctx, t.taskID, domain.FailureUpdate(message)); err != nil {
		t.logger.ErrorContext(ctx, "failed to record task failure", "error", err)
	}
}
