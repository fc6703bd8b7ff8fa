package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// anyType is the routing key for handlers that receive every event.
const anyType = "*"

// InMemoryEventEmitter routes events to handlers in the same process,
// synchronously and in registration order. Handlers are keyed by event type;
// handlers added with RegisterHandler see every type.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	routes map[string][]EventHandler
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no routes.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		routes: make(map[string][]EventHandler),
		logger: logger.With("component", "event_emitter"),
	}
}

// Subscribe routes events of eventType to handler.
func (e *InMemoryEventEmitter) Subscribe(eventType string, handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routes[eventType] = append(e.routes[eventType], handler)
	e.logger.Debug("handler subscribed", "event_type", eventType, "handler_count", len(e.routes[eventType]))
}

// RegisterHandler routes every event, whatever its type, to handler.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.Subscribe(anyType, handler)
}

// handlersFor snapshots the handlers for eventType, typed routes first.
func (e *InMemoryEventEmitter) handlersFor(eventType string) []EventHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	typed, wildcard := e.routes[eventType], e.routes[anyType]
	out := make([]EventHandler, 0, len(typed)+len(wildcard))
	out = append(out, typed...)
	return append(out, wildcard...)
}

// EmitEvent delivers event to every handler routed for its type. A failing
// handler does not stop delivery; all handler errors are joined. An event
// with no route is logged and dropped.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	log := e.logger.With("event_id", event.ID, "event_type", event.Type)

	handlers := e.handlersFor(event.Type)
	if len(handlers) == 0 {
		log.WarnContext(ctx, "no handlers routed for event")
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.ErrorContext(ctx, "event handler failed", "error", err, "handler_index", i)
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		log.DebugContext(ctx, "event delivered", "handler_count", len(handlers))
	}
	return errors.Join(errs...)
}
