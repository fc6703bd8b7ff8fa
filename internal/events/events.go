package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypePhotoGeneration is the event type emitted when a generation task is accepted.
const TypePhotoGeneration = "photo_generation"

// PhotoGenerationPayload identifies the task record a photo_generation event refers to.
type PhotoGenerationPayload struct {
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
}

// TaskRequestEvent represents a request to run background work.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type selects the handler that should act on the event
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a new TaskRequestEvent with the specified type and payload.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewPhotoGenerationEvent creates the event announcing a newly accepted generation task.
func NewPhotoGenerationEvent(taskID, userID uuid.UUID) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TypePhotoGeneration, PhotoGenerationPayload{
		TaskID: taskID,
		UserID: userID,
	})
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// A returned error means at least one handler could not accept the event.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
