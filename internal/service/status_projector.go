package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
)

// StatusView is the client-visible state of a generation task.
type StatusView struct {
	TaskID       uuid.UUID         `json:"taskId"`
	Status       domain.TaskStatus `json:"status"`
	Progress     int               `json:"progress"`
	ResultURL    string            `json:"resultUrl,omitempty"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// ResultView is the outcome of a completed task.
type ResultView struct {
	TaskID       uuid.UUID `json:"taskId"`
	ResultURL    string    `json:"resultUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Prompt       string    `json:"prompt"`
	CreateTime   time.Time `json:"createTime"`
}

// ProjectStatus maps a task record to its client view. Result URLs appear
// only once completed and a message only once failed; the enhanced prompt
// and timestamps never leave the service.
func ProjectStatus(task *domain.GenerationTask) StatusView {
	view := StatusView{
		TaskID:   task.ID,
		Status:   task.Status,
		Progress: task.Progress,
	}

	switch task.Status {
	case domain.TaskStatusCompleted:
		view.ResultURL = task.ResultURL
		view.ThumbnailURL = task.ThumbnailURL
	case domain.TaskStatusFailed:
		view.Message = task.ErrorMessage
		if view.Message == "" {
			view.Message = domain.DefaultFailureMessage
		}
	}

	return view
}

// ProjectResult returns the result view of a completed task, or
// ErrTaskNotCompleted for any other status.
func ProjectResult(task *domain.GenerationTask) (*ResultView, error) {
	if task.Status != domain.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}
	return &ResultView{
		TaskID:       task.ID,
		ResultURL:    task.ResultURL,
		ThumbnailURL: task.ThumbnailURL,
		Prompt:       task.Prompt,
		CreateTime:   task.CreatedAt,
	}, nil
}
