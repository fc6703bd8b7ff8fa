package task

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/events"
)

// Task type constants
const (
	// TaskTypePhotoGeneration identifies tasks that drive one generation record
	TaskTypePhotoGeneration = events.TypePhotoGeneration
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the identifier of the record the task works on
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}
