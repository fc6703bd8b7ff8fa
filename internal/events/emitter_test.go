package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func photoEvent(t *testing.T) *TaskRequestEvent {
	t.Helper()
	event, err := NewPhotoGenerationEvent(uuid.New(), uuid.New())
	require.NoError(t, err)
	return event
}

func TestEmitEvent_Routing(t *testing.T) {
	tests := []struct {
		name         string
		subscribe    func(e *InMemoryEventEmitter, typed, other, wildcard *MockEventHandler)
		wantTyped    int
		wantOther    int
		wantCatchAll int
	}{
		{
			name:      "no routes",
			subscribe: func(e *InMemoryEventEmitter, typed, other, wildcard *MockEventHandler) {},
		},
		{
			name: "typed route only",
			subscribe: func(e *InMemoryEventEmitter, typed, other, wildcard *MockEventHandler) {
				e.Subscribe(TypePhotoGeneration, typed)
				e.Subscribe("thumbnail", other)
			},
			wantTyped: 1,
		},
		{
			name: "wildcard sees every type",
			subscribe: func(e *InMemoryEventEmitter, typed, other, wildcard *MockEventHandler) {
				e.Subscribe(TypePhotoGeneration, typed)
				e.RegisterHandler(wildcard)
			},
			wantTyped:    1,
			wantCatchAll: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			emitter := NewInMemoryEventEmitter(discardLogger())
			typed, other, wildcard := &MockEventHandler{}, &MockEventHandler{}, &MockEventHandler{}
			tc.subscribe(emitter, typed, other, wildcard)

			require.NoError(t, emitter.EmitEvent(context.Background(), photoEvent(t)))
			assert.Equal(t, tc.wantTyped, typed.HandledCount)
			assert.Equal(t, tc.wantOther, other.HandledCount)
			assert.Equal(t, tc.wantCatchAll, wildcard.HandledCount)
		})
	}
}

func TestEmitEvent_HandlerFailure(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())
	queueFull := errors.New("queue full")

	first := &MockEventHandler{HandlerError: queueFull}
	second := &MockEventHandler{}
	emitter.Subscribe(TypePhotoGeneration, first)
	emitter.RegisterHandler(second)

	event := photoEvent(t)
	err := emitter.EmitEvent(context.Background(), event)
	require.ErrorIs(t, err, queueFull)
	assert.Equal(t, "queue full", err.Error())

	assert.Equal(t, 1, second.HandledCount)
	assert.Same(t, event, second.LastEvent)
}

func TestEmitEvent_ConcurrentSubscribe(t *testing.T) {
	emitter := NewInMemoryEventEmitter(discardLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			emitter.Subscribe(TypePhotoGeneration, &MockEventHandler{})
		}
	}()

	event := photoEvent(t)
	for i := 0; i < 50; i++ {
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	}
	<-done
}
