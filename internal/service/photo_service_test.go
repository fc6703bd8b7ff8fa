package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/events"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"github.com/phrazzld/magicphoto-api/internal/platform/filestore"
	"github.com/phrazzld/magicphoto-api/internal/platform/memory"
	"github.com/phrazzld/magicphoto-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPhotoConfig = PhotoServiceConfig{GenerationCost: 1, EstimatedSeconds: 30}

type stubProvider struct {
	img *generation.GeneratedImage
	err error
}

func (p *stubProvider) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.GeneratedImage, error) {
	return p.img, p.err
}

// pipeline wires a real runner behind the emitter the way the server does.
type pipeline struct {
	store   *memory.Store
	gallery GalleryService
	runner  *task.TaskRunner
	emitter *events.InMemoryEventEmitter
}

func newPipeline(t *testing.T, provider generation.ImageProvider) *pipeline {
	t.Helper()
	logger := testLogger()
	s := newMemoryStore()

	gallery, err := NewGalleryService(s, logger)
	require.NoError(t, err)

	images, err := filestore.New(t.TempDir(), "http://localhost:8080", 1<<20, logger)
	require.NoError(t, err)

	factory, err := task.NewPhotoGenerationTaskFactory(task.Dependencies{
		Store:     s,
		Provider:  provider,
		Images:    images,
		Publisher: gallery,
	}, logger)
	require.NoError(t, err)

	runner := task.NewTaskRunner(s, task.TaskRunnerConfig{WorkerCount: 2, QueueSize: 10}, logger)
	require.NoError(t, runner.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Stop(ctx)
	})

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.Subscribe(events.TypePhotoGeneration, task.NewTaskFactoryEventHandler(factory, runner, logger))

	return &pipeline{store: s, gallery: gallery, runner: runner, emitter: emitter}
}

func waitForTerminal(t *testing.T, s *memory.Store, id uuid.UUID) *domain.GenerationTask {
	t.Helper()
	var final *domain.GenerationTask
	require.Eventually(t, func() bool {
		got, err := s.GetTask(context.Background(), id)
		if err != nil {
			return false
		}
		final = got
		return got.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return final
}

func TestNewPhotoService_Validation(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	emitter := newEmitter(nil)
	logger := testLogger()

	_, err := NewPhotoService(nil, s, emitter, testPhotoConfig, logger)
	assert.Error(t, err)
	_, err = NewPhotoService(s, nil, emitter, testPhotoConfig, logger)
	assert.Error(t, err)
	_, err = NewPhotoService(s, s, nil, testPhotoConfig, logger)
	assert.Error(t, err)
	_, err = NewPhotoService(s, s, emitter, testPhotoConfig, nil)
	assert.Error(t, err)
	_, err = NewPhotoService(s, s, emitter, PhotoServiceConfig{GenerationCost: 0}, logger)
	assert.Error(t, err)

	svc, err := NewPhotoService(s, s, emitter, testPhotoConfig, logger)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestPhotoService_SubmitRunsToCompletion(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &stubProvider{img: &generation.GeneratedImage{
		Data:     []byte("\x89PNG\r\n\x1a\nimage"),
		MIMEType: "image/png",
	}})
	user := seedUser(t, p.store, 1)

	svc, err := NewPhotoService(p.store, p.store, p.emitter, testPhotoConfig, testLogger())
	require.NoError(t, err)

	accepted, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:   user.ID,
		PhotoURL: "  http://localhost:8080/uploads/cat.jpg ",
		Prompt:   "dragon",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, accepted.EstimatedSeconds)
	assert.Equal(t, "http://localhost:8080/uploads/cat.jpg", accepted.PhotoURL)

	balance, err := p.store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Points)

	final := waitForTerminal(t, p.store, accepted.ID)
	assert.Equal(t, domain.TaskStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.NotEmpty(t, final.ResultURL)

	status, err := svc.GetStatus(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, final.ResultURL, status.ResultURL)

	result, err := svc.GetResult(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, "dragon", result.Prompt)

	page, err := p.gallery.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, accepted.ID, page.Items[0].TaskID)
}

func TestPhotoService_SubmitFallsBackToOriginalPhoto(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &stubProvider{err: generation.ErrGenerationFailed})
	user := seedUser(t, p.store, 3)

	svc, err := NewPhotoService(p.store, p.store, p.emitter, testPhotoConfig, testLogger())
	require.NoError(t, err)

	accepted, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:   user.ID,
		PhotoURL: "http://localhost:8080/uploads/cat.jpg",
		Prompt:   "dragon",
	})
	require.NoError(t, err)

	final := waitForTerminal(t, p.store, accepted.ID)
	assert.Equal(t, domain.TaskStatusCompleted, final.Status)
	assert.Equal(t, "http://localhost:8080/uploads/cat.jpg", final.ResultURL)
}

func TestPhotoService_ConcurrentSubmitDebitsOnce(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	user := seedUser(t, s, 1)
	svc, err := NewPhotoService(s, s, newEmitter(nil), testPhotoConfig, testLogger())
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), SubmitRequest{
				UserID:   user.ID,
				PhotoURL: "http://localhost:8080/uploads/cat.jpg",
				Prompt:   "dragon",
			})
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	balance, err := s.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Points)
}

func TestPhotoService_SubmitInsufficientFundsCreatesNoTask(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	user := seedUser(t, s, 0)
	svc, err := NewPhotoService(s, s, newEmitter(nil), testPhotoConfig, testLogger())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitRequest{
		UserID:   user.ID,
		PhotoURL: "http://localhost:8080/uploads/cat.jpg",
		Prompt:   "dragon",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	unfinished, err := s.ListUnfinishedTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unfinished)
}

func TestPhotoService_SubmitDispatchFailure(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	user := seedUser(t, s, 2)
	emitter := newEmitter(func(ctx context.Context, event *events.TaskRequestEvent) error {
		return task.ErrDispatchFailed
	})
	svc, err := NewPhotoService(s, s, emitter, testPhotoConfig, testLogger())
	require.NoError(t, err)

	accepted, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:   user.ID,
		PhotoURL: "http://localhost:8080/uploads/cat.jpg",
		Prompt:   "dragon",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, accepted.Status)
	assert.Equal(t, DispatchFailedMessage, accepted.ErrorMessage)

	stored, err := s.GetTask(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)

	status, err := svc.GetStatus(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, DispatchFailedMessage, status.Message)

	balance, err := s.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Points)
}

func TestPhotoService_SubmitInvalidInput(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	user := seedUser(t, s, 5)
	svc, err := NewPhotoService(s, s, newEmitter(nil), testPhotoConfig, testLogger())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{"missing photo", SubmitRequest{UserID: user.ID, Prompt: "dragon"}},
		{"blank prompt", SubmitRequest{UserID: user.ID, PhotoURL: "http://x/a.jpg", Prompt: "   "}},
		{"missing user", SubmitRequest{PhotoURL: "http://x/a.jpg", Prompt: "dragon"}},
	}
	for _, tc := range tests {
		_, err := svc.Submit(context.Background(), tc.req)
		assert.ErrorIs(t, err, ErrInvalidInput, tc.name)
	}

	balance, err := s.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance.Points)
}

func TestPhotoService_SubmitUnknownUser(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	svc, err := NewPhotoService(s, s, newEmitter(nil), testPhotoConfig, testLogger())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitRequest{
		UserID:   uuid.New(),
		PhotoURL: "http://localhost:8080/uploads/cat.jpg",
		Prompt:   "dragon",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPhotoService_StatusAndResultLookups(t *testing.T) {
	t.Parallel()

	s := newMemoryStore()
	svc, err := NewPhotoService(s, s, newEmitter(nil), testPhotoConfig, testLogger())
	require.NoError(t, err)

	_, err = svc.GetStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.GetResult(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)

	pending, err := domain.NewGenerationTask(uuid.New(), "http://x/a.jpg", "dragon", 30)
	require.NoError(t, err)
	require.NoError(t, s.CreateTask(context.Background(), pending))
	_, err = s.UpdateTask(context.Background(), pending.ID, domain.ProcessingUpdate())
	require.NoError(t, err)

	status, err := svc.GetStatus(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, status.Status)
	assert.Equal(t, 10, status.Progress)

	_, err = svc.GetResult(context.Background(), pending.ID)
	assert.ErrorIs(t, err, ErrTaskNotCompleted)
}
