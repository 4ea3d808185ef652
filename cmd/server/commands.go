package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"newsletter-go/internal/app"
	"newsletter-go/internal/config"
	"newsletter-go/internal/database"
	"newsletter-go/internal/logging"
	"newsletter-go/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "newsletter",
		Short:         "Newsletter subscription intake service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultFile, "path to the configuration file")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newCreateDBCommand(opts),
	)
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings(opts)
			if err != nil {
				return err
			}
			if settings.Database.Provider == config.ProviderDapr {
				return fmt.Errorf("migrations are not supported for provider %s", settings.Database.Provider)
			}

			ctx := commandContext(cmd)
			db, err := database.Open(ctx, settings.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Migrate(ctx, db, settings.Database.Provider, logger)
		},
	}
}

func newCreateDBCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-db",
		Short: "Create the configured database on the server and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := loadSettings(opts)
			if err != nil {
				return err
			}
			if err := database.CreateDatabase(commandContext(cmd), settings.Database); err != nil {
				return err
			}
			logger.WithField("database", settings.Database.DatabaseName).Info("Database created")
			return nil
		},
	}
}

func loadSettings(opts *rootOptions) (*config.Settings, *logging.ContextLogger, error) {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return settings, logging.NewLogger(settings.Log.Level), nil
}

func ginMode(logLevel string) string {
	if logLevel == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// runServe refuses to bind the listener until the store is reachable, and
// returns an error for any startup failure so the process exits non-zero.
func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, logger, err := loadSettings(opts)
	if err != nil {
		return err
	}

	tp, err := telemetry.InitTracing(settings.Telemetry.ServiceName, settings.Telemetry.ServiceVersion, settings.Telemetry.Exporter)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := telemetry.ShutdownTracing(context.Background(), tp); err != nil {
			logger.WithError(err).Error("Error shutting down tracer provider")
		}
	}()

	repo, closeStore, err := app.OpenRepository(ctx, settings.Database, true, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.WithError(err).Error("Error closing database")
		}
	}()

	application := app.Build(&app.Config{
		ServiceName:    settings.Telemetry.ServiceName,
		ServiceVersion: settings.Telemetry.ServiceVersion,
		Address:        settings.Address(),
		Logger:         logger,
		TracerProvider: tp,
		GinMode:        ginMode(settings.Log.Level),
		Repository:     repo,
	})
	if err := application.Listen(); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- application.Serve()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
