package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/phrazzld/magicphoto-api/internal/config"
	"github.com/phrazzld/magicphoto-api/internal/platform/gemini"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "magicphoto-api",
		Short:         "Photo transformation API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		port        int
		autoMigrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and generation workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadAppConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, log, autoMigrate)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides config)")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status|version]",
		Short:     "Run database migrations",
		ValidArgs: postgres.MigrationCommands,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadAppConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("migrate requires database.url (MAGICPHOTO_DATABASE_URL)")
			}

			log.Info("running migrations",
				"command", args[0],
				"database", maskDatabaseURL(cfg.Database.URL))

			db, err := setupAppDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}

// loadAppConfig loads configuration and installs the configured logger as
// the process default.
func loadAppConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store", storeKind(cfg))
	return cfg, log, nil
}

// runServer wires the production dependencies and blocks until ctx is done.
func runServer(ctx context.Context, cfg *config.Config, log *slog.Logger, autoMigrate bool) error {
	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil && autoMigrate {
		if err := postgres.Migrate(ctx, db, "up", log); err != nil {
			_ = db.Close()
			return err
		}
	}

	client, err := gemini.NewClient(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create generative model client: %w", err)
	}
	provider, err := gemini.NewImagenProvider(client, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create image provider: %w", err)
	}
	enhancer, err := gemini.NewTextEnhancer(client, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to create prompt enhancer: %w", err)
	}
	log.Info("generative models initialized",
		"image_model", cfg.LLM.ImageModel,
		"text_model", cfg.LLM.TextModel)

	app, err := newApplication(ctx, cfg, log, db, generationModels{provider: provider, enhancer: enhancer})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

func storeKind(cfg *config.Config) string {
	if cfg.Database.URL == "" {
		return "memory"
	}
	return "postgres"
}
