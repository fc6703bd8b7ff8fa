package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"github.com/phrazzld/magicphoto-api/internal/platform/memory"
	"github.com/phrazzld/magicphoto-api/internal/store"
	"github.com/stretchr/testify/require"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       uuid.UUID
	taskType string
	execFn   func(ctx context.Context) error
}

func (m *mockTask) ID() uuid.UUID {
	return m.id
}

func (m *mockTask) Type() string {
	return m.taskType
}

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
	}
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// snapshot is one observed state of a task record.
type snapshot struct {
	Status   domain.TaskStatus
	Progress int
}

// recordingStore wraps the memory store and records every accepted update.
type recordingStore struct {
	*memory.Store

	mu      sync.Mutex
	history map[uuid.UUID][]snapshot

	// updateErr, when set, is consulted before each update.
	updateErr func(update domain.TaskUpdate) error

	// ackErr, when set, is consulted after an update has been applied, which
	// simulates a commit whose acknowledgement never arrives.
	ackErr func(update domain.TaskUpdate) error
}

var _ store.TaskStore = (*recordingStore)(nil)

func newRecordingStore() *recordingStore {
	return &recordingStore{
		Store:   memory.NewStore(setupTestLogger()),
		history: make(map[uuid.UUID][]snapshot),
	}
}

func (s *recordingStore) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	update domain.TaskUpdate,
) (*domain.GenerationTask, error) {
	if s.updateErr != nil {
		if err := s.updateErr(update); err != nil {
			return nil, err
		}
	}
	updated, err := s.Store.UpdateTask(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.history[id] = append(s.history[id], snapshot{Status: updated.Status, Progress: updated.Progress})
	s.mu.Unlock()
	if s.ackErr != nil {
		if err := s.ackErr(update); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *recordingStore) historyOf(id uuid.UUID) []snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]snapshot(nil), s.history[id]...)
}

func (s *recordingStore) progressOf(id uuid.UUID) []int {
	var out []int
	for _, snap := range s.historyOf(id) {
		out = append(out, snap.Progress)
	}
	return out
}

// seedTask stores a pending task and returns it.
func seedTask(t *testing.T, s store.TaskStore) *domain.GenerationTask {
	t.Helper()
	record, err := domain.NewGenerationTask(uuid.New(), "http://localhost:8080/uploads/cat.jpg", "make it a dragon", 30)
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(context.Background(), record))
	return record
}

// fakeProvider implements generation.ImageProvider.
type fakeProvider struct {
	mu       sync.Mutex
	requests []generation.ImageRequest
	fn       func(ctx context.Context, req generation.ImageRequest) (*generation.GeneratedImage, error)
}

func (p *fakeProvider) GenerateImage(
	ctx context.Context,
	req generation.ImageRequest,
) (*generation.GeneratedImage, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	return p.fn(ctx, req)
}

// fakeEnhancer implements generation.PromptEnhancer.
type fakeEnhancer struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, prompt string) (string, error)
}

func (e *fakeEnhancer) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return e.fn(ctx, prompt)
}

// fakeImageStore implements ImageStore.
type fakeImageStore struct {
	mu    sync.Mutex
	saved int
	err   error
}

func (s *fakeImageStore) SaveGenerated(
	ctx context.Context,
	taskID uuid.UUID,
	data []byte,
	mimeType string,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved++
	return "http://localhost:8080/uploads/generated_" + taskID.String() + ".png", nil
}

// fakePublisher implements GalleryPublisher and counts publications per task.
// The first failures calls fail with err.
type fakePublisher struct {
	mu        sync.Mutex
	published map[uuid.UUID][]*domain.GenerationTask
	attempts  int
	failures  int
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(map[uuid.UUID][]*domain.GenerationTask)}
}

func (p *fakePublisher) Publish(ctx context.Context, task *domain.GenerationTask) (*domain.GalleryItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.attempts <= p.failures {
		return nil, p.err
	}
	if len(p.published[task.ID]) > 0 {
		return nil, store.NewStoreError("gallery_item", "create", "task already published", store.ErrDuplicate)
	}
	p.published[task.ID] = append(p.published[task.ID], task)
	return domain.NewGalleryItem(task)
}

func (p *fakePublisher) attemptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func (p *fakePublisher) count(id uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published[id])
}
