package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/magicphoto-api/internal/config"
	"github.com/phrazzld/magicphoto-api/internal/events"
	"github.com/phrazzld/magicphoto-api/internal/generation"
	"github.com/phrazzld/magicphoto-api/internal/platform/filestore"
	"github.com/phrazzld/magicphoto-api/internal/platform/memory"
	"github.com/phrazzld/magicphoto-api/internal/platform/postgres"
	"github.com/phrazzld/magicphoto-api/internal/service"
	"github.com/phrazzld/magicphoto-api/internal/service/auth"
	"github.com/phrazzld/magicphoto-api/internal/store"
	"github.com/phrazzld/magicphoto-api/internal/task"
)

// generationModels are the external model clients the pipeline calls.
// enhancer may be nil, which disables the enhanced fallback tier.
type generationModels struct {
	provider generation.ImageProvider
	enhancer generation.PromptEnhancer
}

// application holds all the dependencies for the server
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore    store.TaskStore
	userStore    store.UserStore
	galleryStore store.GalleryStore
	images       *filestore.LocalStore

	jwtService     auth.JWTService
	userService    service.UserService
	photoService   service.PhotoService
	galleryService service.GalleryService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires every dependency and starts the task runner.
// A nil db selects the in-memory store.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	models generationModels,
) (*application, error) {
	if models.provider == nil {
		return nil, errors.New("image provider is required")
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}
	app.setupStores()

	images, err := filestore.New(cfg.Storage.UploadDir, cfg.BaseURL(), cfg.Storage.MaxUploadBytes, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}
	app.images = images

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app.galleryService, err = service.NewGalleryService(app.galleryStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gallery service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.jwtService, cfg.Account.InitialPoints, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	if err := app.setupTaskRunner(ctx, models); err != nil {
		return nil, err
	}

	app.photoService, err = service.NewPhotoService(
		app.taskStore,
		app.userStore,
		app.eventEmitter,
		service.PhotoServiceConfig{
			GenerationCost:   cfg.Account.GenerationCost,
			EstimatedSeconds: cfg.Task.EstimatedSeconds,
		},
		logger,
	)
	if err != nil {
		_ = app.taskRunner.Stop(ctx)
		return nil, fmt.Errorf("failed to create photo service: %w", err)
	}

	return app, nil
}

func (app *application) setupStores() {
	if app.db == nil {
		mem := memory.NewStore(app.logger)
		app.taskStore = mem
		app.userStore = mem
		app.galleryStore = mem
		return
	}

	app.taskStore = postgres.NewPostgresTaskStore(app.db)
	app.userStore = postgres.NewPostgresUserStore(app.db)
	app.galleryStore = postgres.NewPostgresGalleryStore(app.db)
}

// setupTaskRunner builds the generation pipeline, routes photo generation
// events to it and starts the workers.
func (app *application) setupTaskRunner(ctx context.Context, models generationModels) error {
	factory, err := task.NewPhotoGenerationTaskFactory(task.Dependencies{
		Store:     app.taskStore,
		Provider:  models.provider,
		Enhancer:  models.enhancer,
		Images:    app.images,
		Publisher: app.galleryService,
		Options: task.ImageOptions{
			AspectRatio:    app.config.LLM.AspectRatio,
			NegativePrompt: app.config.LLM.NegativePrompt,
			SampleCount:    app.config.LLM.SampleCount,
		},
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task factory: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount: app.config.Task.WorkerCount,
		QueueSize:   app.config.Task.QueueSize,
	}, app.logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.eventEmitter.Subscribe(events.TypePhotoGeneration,
		task.NewTaskFactoryEventHandler(factory, app.taskRunner, app.logger))

	if err := app.taskRunner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	app.logger.Info("task runner started",
		"workers", app.config.Task.WorkerCount,
		"queue_size", app.config.Task.QueueSize)
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains the task runner.
func (app *application) Run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup stops the workers and closes the database.
// Queued tasks finish before it returns unless ctx expires first.
func (app *application) cleanup(ctx context.Context) error {
	var errs []error
	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop task runner: %w", err))
		} else {
			app.logger.Info("task runner stopped")
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			app.logger.Info("database connection closed")
		}
	}
	return errors.Join(errs...)
}
