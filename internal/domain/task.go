package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a generation task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Progress checkpoints reported while a task moves through the pipeline.
const (
	ProgressQueued         = 0
	ProgressStarted        = 10
	ProgressPrepared       = 30
	ProgressSent           = 50
	ProgressEnhancing      = 60
	ProgressResponseParsed = 80
	ProgressDone           = 100
)

// DefaultFailureMessage is reported for failed tasks that carry no message.
const DefaultFailureMessage = "generation failed"

// Validation and transition errors for GenerationTask
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID    = errors.New("task user ID cannot be empty")
	ErrEmptyPhotoURL      = errors.New("photo URL cannot be empty")
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrTaskTerminal       = errors.New("task is already in a terminal state")
	ErrInvalidTransition  = errors.New("invalid task status transition")
	ErrProgressRegression = errors.New("task progress cannot decrease")
	ErrProgressOutOfRange = errors.New("task progress must be between 0 and 100")
	ErrMisplacedResult    = errors.New("result fields may only be set on completion")
	ErrMisplacedFailure   = errors.New("error message may only be set on failure")
)

// GenerationTask is the record of one asynchronous image-transformation request.
// Inputs are immutable after creation; every other field changes only through Apply.
type GenerationTask struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	PhotoURL         string     `json:"photo_url"`
	Prompt           string     `json:"prompt"`
	Status           TaskStatus `json:"status"`
	Progress         int        `json:"progress"`
	ResultURL        string     `json:"result_url,omitempty"`
	ThumbnailURL     string     `json:"thumbnail_url,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	EnhancedPrompt   string     `json:"enhanced_prompt,omitempty"`
	EstimatedSeconds int        `json:"estimated_seconds"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// NewGenerationTask creates a pending task with a fresh ID and zero progress.
func NewGenerationTask(
	userID uuid.UUID,
	photoURL, prompt string,
	estimatedSeconds int,
) (*GenerationTask, error) {
	now := time.Now().UTC()
	task := &GenerationTask{
		ID:               uuid.New(),
		UserID:           userID,
		PhotoURL:         photoURL,
		Prompt:           prompt,
		Status:           TaskStatusPending,
		Progress:         ProgressQueued,
		EstimatedSeconds: estimatedSeconds,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the task has valid data.
func (t *GenerationTask) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if t.PhotoURL == "" {
		return ErrEmptyPhotoURL
	}

	if t.Prompt == "" {
		return ErrEmptyPrompt
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if t.Progress < 0 || t.Progress > ProgressDone {
		return ErrProgressOutOfRange
	}

	return nil
}

// IsTerminal reports whether the task can no longer change.
func (t *GenerationTask) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// Clone returns a deep copy so callers never share a stored record.
func (t *GenerationTask) Clone() *GenerationTask {
	if t == nil {
		return nil
	}
	c := *t
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		c.CompletedAt = &completedAt
	}
	return &c
}

// TaskUpdate is a partial update to a GenerationTask. Nil fields are left unchanged.
type TaskUpdate struct {
	Status         *TaskStatus
	Progress       *int
	ResultURL      *string
	ThumbnailURL   *string
	ErrorMessage   *string
	EnhancedPrompt *string
}

// ProgressUpdate returns an update that only moves progress.
func ProgressUpdate(progress int) TaskUpdate {
	return TaskUpdate{Progress: &progress}
}

// ProcessingUpdate returns the update applied when a worker picks the task up.
func ProcessingUpdate() TaskUpdate {
	status := TaskStatusProcessing
	progress := ProgressStarted
	return TaskUpdate{Status: &status, Progress: &progress}
}

// CompletionUpdate returns the terminal update for a successful task.
// An empty enhancedPrompt leaves the field untouched.
func CompletionUpdate(resultURL, thumbnailURL, enhancedPrompt string) TaskUpdate {
	status := TaskStatusCompleted
	progress := ProgressDone
	update := TaskUpdate{
		Status:       &status,
		Progress:     &progress,
		ResultURL:    &resultURL,
		ThumbnailURL: &thumbnailURL,
	}
	if enhancedPrompt != "" {
		update.EnhancedPrompt = &enhancedPrompt
	}
	return update
}

// FailureUpdate returns the terminal update for a task that could not run.
func FailureUpdate(message string) TaskUpdate {
	status := TaskStatusFailed
	if message == "" {
		message = DefaultFailureMessage
	}
	return TaskUpdate{Status: &status, ErrorMessage: &message}
}

// Apply merges the update into the task, enforcing the lifecycle rules:
// terminal tasks never change, status and progress never move backwards,
// and result or error fields only accompany their own terminal transition.
// On error the task is left unmodified.
func (t *GenerationTask) Apply(update TaskUpdate, now time.Time) error {
	if t.IsTerminal() {
		return fmt.Errorf("%w: task %s is %s", ErrTaskTerminal, t.ID, t.Status)
	}

	next := t.Status
	if update.Status != nil {
		if !update.Status.IsValid() {
			return ErrInvalidTaskStatus
		}
		if update.Status.rank() < t.Status.rank() {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, *update.Status)
		}
		next = *update.Status
	}

	progress := t.Progress
	if update.Progress != nil {
		if *update.Progress < 0 || *update.Progress > ProgressDone {
			return ErrProgressOutOfRange
		}
		if *update.Progress < t.Progress {
			return fmt.Errorf("%w: %d -> %d", ErrProgressRegression, t.Progress, *update.Progress)
		}
		progress = *update.Progress
	}

	if (update.ResultURL != nil || update.ThumbnailURL != nil) && next != TaskStatusCompleted {
		return ErrMisplacedResult
	}
	if update.ErrorMessage != nil && next != TaskStatusFailed {
		return ErrMisplacedFailure
	}

	switch next {
	case TaskStatusCompleted:
		progress = ProgressDone
	case TaskStatusPending, TaskStatusProcessing, TaskStatusFailed:
		if progress == ProgressDone {
			return fmt.Errorf("%w: progress 100 requires completion", ErrInvalidTransition)
		}
	}

	t.Status = next
	t.Progress = progress
	if update.ResultURL != nil {
		t.ResultURL = *update.ResultURL
	}
	if update.ThumbnailURL != nil {
		t.ThumbnailURL = *update.ThumbnailURL
	}
	if update.ErrorMessage != nil {
		t.ErrorMessage = *update.ErrorMessage
	}
	if update.EnhancedPrompt != nil {
		t.EnhancedPrompt = *update.EnhancedPrompt
	}
	t.UpdatedAt = now
	if next.IsTerminal() {
		completedAt := now
		t.CompletedAt = &completedAt
	}

	return nil
}

// IsValid checks if the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the lifecycle.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// rank orders statuses along the lifecycle; both terminal states share the top rank.
func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusProcessing:
		return 1
	default:
		return 2
	}
}
